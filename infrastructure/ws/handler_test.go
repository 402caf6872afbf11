package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"room-chat/mocks"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type received struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newTestHandler(ctrl *gomock.Controller) (*Handler, *mocks.MockChatSessions, *mocks.MockVerifier, *mocks.MockConnectionMetrics) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	chat := mocks.NewMockChatSessions(ctrl)
	verifier := mocks.NewMockVerifier(ctrl)
	metrics := mocks.NewMockConnectionMetrics(ctrl)
	cfg := Config{BufferSize: 8, Heartbeat: Heartbeat{Interval: time.Minute, Timeout: time.Second}}
	return NewHandler(log, cfg, chat, verifier, metrics), chat, verifier, metrics
}

func TestHandler_RejectsMissingCredential(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler, _, _, _ := newTestHandler(ctrl)

	// Given a request without any credential
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	// When it reaches the handler
	handler.ServeHTTP(w, r)

	// Then it is refused before any upgrade
	req.Equal(http.StatusUnauthorized, w.Code)
	var body errors.Body
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("AUTH_ERROR", body.Code)
}

func TestHandler_RejectsInvalidCredential(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler, _, verifier, _ := newTestHandler(ctrl)

	// Given a credential the verifier refuses
	verifier.EXPECT().Verify(gomock.Any(), "forged").Return(domain.Identity{}, errors.ErrInvalidToken).Times(1)
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()

	// When it reaches the handler
	handler.ServeHTTP(w, r)

	// Then the client gets a 401
	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestHandler_Session(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler, chat, verifier, metrics := newTestHandler(ctrl)
	identity := domain.Identity{UserID: "alice-id", Username: "alice"}
	roomID := domain.NewRoomID()

	var sink contract.EventSink
	disconnected := make(chan struct{})
	verifier.EXPECT().Verify(gomock.Any(), "good").Return(identity, nil).Times(1)
	chat.EXPECT().Connect(gomock.Any(), gomock.Any(), identity, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ contract.ConnectionID, _ domain.Identity, s contract.EventSink) ([]domain.RoomID, error) {
			sink = s
			return []domain.RoomID{roomID}, nil
		}).Times(1)
	chat.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
			m := domain.NewMessage(cmd.Room, cmd.UserID, cmd.Content, time.Now())
			return m, sink.Consume(ctx, event.NewMessageCreated(m))
		}).Times(1)
	chat.EXPECT().Disconnect(gomock.Any(), gomock.Any(), identity).
		Do(func(context.Context, contract.ConnectionID, domain.Identity) { close(disconnected) }).Times(1)
	metrics.EXPECT().ConnectionOpened().Times(1)
	metrics.EXPECT().ConnectionClosed().Times(1)
	metrics.EXPECT().RecordCommand("send_message", "ok").Times(1)
	metrics.EXPECT().RecordCommand("shout", "VALIDATION_ERROR").Times(1)

	srv := httptest.NewServer(handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given an authenticated client
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?token=good", nil)
	req.NoError(err)

	// When it sends a message
	req.NoError(wsjson.Write(ctx, conn, map[string]string{
		"event": "send_message", "room_id": roomID.String(), "content": "hello",
	}))

	// Then the broadcast event comes back on the socket
	var got received
	req.NoError(wsjson.Read(ctx, conn, &got))
	req.Equal("message_created", got.Event)
	var payload event.MessagePayload
	req.NoError(json.Unmarshal(got.Payload, &payload))
	req.Equal("hello", payload.Content)
	req.Equal(roomID, payload.Room)

	// When it sends an unknown action
	req.NoError(wsjson.Write(ctx, conn, map[string]string{"event": "shout"}))

	// Then only this connection receives the error
	req.NoError(wsjson.Read(ctx, conn, &got))
	req.Equal("error", got.Event)
	var body errors.Body
	req.NoError(json.Unmarshal(got.Payload, &body))
	req.Equal(http.StatusBadRequest, body.Status)
	req.Equal("shout", body.Action)

	// When the client goes away
	req.NoError(conn.Close(websocket.StatusNormalClosure, ""))

	// Then the session is torn down
	select {
	case <-disconnected:
	case <-ctx.Done():
		req.Fail("Disconnect was never called")
	}
	req.Eventually(func() bool { return handler.ConnectionCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHandler_Shutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler, chat, verifier, metrics := newTestHandler(ctrl)
	identity := domain.Identity{UserID: "bob-id", Username: "bob"}

	verifier.EXPECT().Verify(gomock.Any(), "good").Return(identity, nil).Times(1)
	chat.EXPECT().Connect(gomock.Any(), gomock.Any(), identity, gomock.Any()).Return(nil, nil).Times(1)
	chat.EXPECT().Disconnect(gomock.Any(), gomock.Any(), identity).Times(1)
	metrics.EXPECT().ConnectionOpened().Times(1)
	metrics.EXPECT().ConnectionClosed().Times(1)

	srv := httptest.NewServer(handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given a live connection
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer good"}},
	})
	req.NoError(err)
	defer conn.CloseNow()
	req.Eventually(func() bool { return handler.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	// When the server shuts down
	err = handler.Shutdown(ctx)

	// Then every connection has been released
	req.NoError(err)
	req.Zero(handler.ConnectionCount())
}

func TestHandler_RefusesSocketsAfterShutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler, _, verifier, _ := newTestHandler(ctrl)
	identity := domain.Identity{UserID: "bob-id", Username: "bob"}

	// Given a handler that has shut down
	req.NoError(handler.Shutdown(context.Background()))
	verifier.EXPECT().Verify(gomock.Any(), "good").Return(identity, nil).Times(1)
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()

	// When a client tries to connect
	handler.ServeHTTP(w, r)

	// Then it is refused without reaching the chat
	req.Equal(http.StatusServiceUnavailable, w.Code)
	var body errors.Body
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("UNAVAILABLE", body.Code)
	req.Zero(handler.ConnectionCount())
}

func TestDecodeCommand(t *testing.T) {
	identity := domain.Identity{UserID: "alice-id"}
	roomID := domain.NewRoomID()
	messageID := domain.NewMessageID()

	tests := []struct {
		name    string
		raw     string
		want    domain.Command
		wantErr error
	}{
		{"send", `{"event":"send_message","room_id":"` + roomID.String() + `","content":"hi"}`,
			domain.SendMessageCommand{Room: roomID, UserID: "alice-id", Content: "hi"}, nil},
		{"join", `{"event":"join_room","room_id":"` + roomID.String() + `"}`,
			domain.JoinRoomCommand{Room: roomID, UserID: "alice-id"}, nil},
		{"leave", `{"event":"leave_room","room_id":"` + roomID.String() + `"}`,
			domain.LeaveRoomCommand{Room: roomID, UserID: "alice-id"}, nil},
		{"edit", `{"event":"edit_message","message_id":"` + messageID.String() + `","content":"fixed"}`,
			domain.EditMessageCommand{Message: messageID, UserID: "alice-id", Content: "fixed"}, nil},
		{"delete", `{"event":"delete_message","message_id":"` + messageID.String() + `"}`,
			domain.DeleteMessageCommand{Message: messageID, UserID: "alice-id"}, nil},
		{"bad room id", `{"event":"join_room","room_id":"nope"}`, nil, errors.ErrInvalidID},
		{"unknown action", `{"event":"dance"}`, nil, errors.ErrUnknownAction},
		{"not json", `{"event":`, nil, errors.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, _, err := decodeCommand([]byte(tt.raw), identity)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				req.ErrorIs(err, errors.ErrValidation)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}
