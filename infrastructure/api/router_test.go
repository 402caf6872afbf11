package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"room-chat/auth"
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/mocks"
	"room-chat/services"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type statusLog struct {
	mu       sync.Mutex
	statuses []int
}

func (s *statusLog) RecordHTTPStatus(statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, statusCode)
}

type testAPI struct {
	router  http.Handler
	auth    *mocks.MockAuthAPI
	chat    *mocks.MockChatAPI
	metrics *statusLog
}

var alice = domain.Identity{UserID: "alice-id", Username: "alice"}

func newTestAPI(t *testing.T, limiter *RateLimiter) testAPI {
	ctrl := gomock.NewController(t)
	a := testAPI{
		auth:    mocks.NewMockAuthAPI(ctrl),
		chat:    mocks.NewMockChatAPI(ctrl),
		metrics: &statusLog{},
	}
	a.router = NewRouter(RouterDeps{
		Log:         logs.GetLoggerFromLevel(slog.LevelDebug),
		Auth:        a.auth,
		Chat:        a.chat,
		RateLimiter: limiter,
		Metrics:     a.metrics,
	})
	return a
}

func (a testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func (a testAPI) asAlice() {
	a.auth.EXPECT().Verify(gomock.Any(), "alice-token").Return(alice, nil).AnyTimes()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.Body {
	var body errors.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_Register(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	profile := services.Profile{ID: "alice-id", Username: "alice", Active: true}

	// Given a valid registration
	a.auth.EXPECT().Register(gomock.Any(), auth.RegisterRequest{Username: "alice", Password: "password-alice"}).
		Return(services.Token("jwt"), profile, nil).Times(1)

	// When it is posted
	w := a.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice", "password": "password-alice"}, "")

	// Then the account and its token are returned
	req.Equal(http.StatusCreated, w.Code)
	var got tokenResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal("jwt", got.Token)
	req.Equal(profile.Username, got.User.Username)
	req.Equal([]int{http.StatusCreated}, a.metrics.statuses)
}

func TestRouter_MalformedBody(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)

	// When the body is not the expected JSON
	w := a.do(http.MethodPost, "/api/auth/login", map[string]any{"username": 42}, "")

	// Then it is a validation error
	req.Equal(http.StatusBadRequest, w.Code)
	req.Equal("VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestRouter_RequiresCredential(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.auth.EXPECT().Verify(gomock.Any(), "expired").Return(domain.Identity{}, errors.ErrExpiredToken).Times(1)

	// When no credential is given
	w := a.do(http.MethodGet, "/api/rooms", nil, "")

	// Then the request is unauthenticated
	req.Equal(http.StatusUnauthorized, w.Code)
	req.Equal("AUTH_ERROR", decodeError(t, w).Code)

	// When the credential has expired
	w = a.do(http.MethodGet, "/api/rooms", nil, "expired")

	// Then the request is unauthenticated too
	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestRouter_ErrorTaxonomy(t *testing.T) {
	roomID := domain.NewRoomID()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", errors.ErrAlreadyMember, http.StatusConflict, "CONFLICT"},
		{"not found", errors.ErrRoomNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", errors.ErrNotMember, http.StatusForbidden, "AUTHORIZATION_ERROR"},
		{"store", errors.Store(errors.New("disk is gone")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			a := newTestAPI(t, nil)
			a.asAlice()
			a.chat.EXPECT().JoinRoom(gomock.Any(), alice, roomID).Return(domain.Membership{}, tt.err).Times(1)

			// When the service fails
			w := a.do(http.MethodPost, "/api/rooms/"+roomID.String()+"/join", nil, "alice-token")

			// Then the failure is mapped on the status taxonomy
			req.Equal(tt.wantStatus, w.Code)
			body := decodeError(t, w)
			req.Equal(tt.wantCode, body.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				req.Equal("internal error", body.Message)
			}
		})
	}
}

func TestRouter_ListMessages(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	roomID := domain.NewRoomID()
	before := domain.NewMessageID()
	m1 := domain.NewMessage(roomID, "bob-id", "hello", time.Now())
	m2 := domain.NewMessage(roomID, "bob-id", "world", time.Now())

	// Given a page of two messages with more history behind
	a.chat.EXPECT().GetMessages(gomock.Any(), domain.GetMessagesCommand{
		Room: roomID, UserID: alice.UserID, Before: &before, Limit: 2,
	}).Return(services.MessagePage{Messages: []domain.Message{m2, m1}, NextBefore: &m1.ID}, nil).Times(1)

	// When the history is requested
	w := a.do(http.MethodGet, "/api/rooms/"+roomID.String()+"/messages?limit=2&before="+before.String(), nil, "alice-token")

	// Then the page and its cursor are returned
	req.Equal(http.StatusOK, w.Code)
	var page messagePageResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &page))
	req.Len(page.Messages, 2)
	req.Equal("world", page.Messages[0].Content)
	req.NotNil(page.NextBefore)
	req.Equal(m1.ID, *page.NextBefore)
}

func TestRouter_InvalidParams(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()

	// When the room id is not an id
	w := a.do(http.MethodGet, "/api/rooms/not-an-id", nil, "alice-token")
	req.Equal(http.StatusBadRequest, w.Code)

	// When the limit is not a number
	w = a.do(http.MethodGet, "/api/rooms/"+domain.NewRoomID().String()+"/messages?limit=ten", nil, "alice-token")
	req.Equal(http.StatusBadRequest, w.Code)

	// When the visibility is unknown
	w = a.do(http.MethodPost, "/api/rooms", map[string]string{"name": "general", "visibility": "secret"}, "alice-token")
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestRouter_CreateRoomDefaultsToPublic(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	room := domain.Room{ID: domain.NewRoomID(), Name: "general", Visibility: domain.VisibilityPublic}
	a.chat.EXPECT().CreateRoom(gomock.Any(), alice, "general", domain.VisibilityPublic).Return(room, nil).Times(1)

	// When a room is created without visibility
	w := a.do(http.MethodPost, "/api/rooms", map[string]string{"name": "general"}, "alice-token")

	// Then it is public
	req.Equal(http.StatusCreated, w.Code)
	var got roomResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal(room.ID, got.ID)
	req.Equal(domain.VisibilityPublic, got.Visibility)
}

func TestRouter_SearchMessagesPassesLanguage(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	roomID := domain.NewRoomID()
	a.chat.EXPECT().SearchMessages(gomock.Any(), alice.UserID, roomID, "invoice --lang en", 5).Return(nil, nil).Times(1)

	// When searching with a language filter
	w := a.do(http.MethodGet, "/api/rooms/"+roomID.String()+"/messages/search?q=invoice&lang=en&limit=5", nil, "alice-token")

	// Then the filter reaches the query
	req.Equal(http.StatusOK, w.Code)
}

func TestRouter_RemoveMember(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	roomID := domain.NewRoomID()
	a.chat.EXPECT().RemoveMember(gomock.Any(), alice.UserID, roomID, domain.UserID("bob-id")).Return(nil).Times(1)

	// When an admin removes a member
	w := a.do(http.MethodDelete, "/api/rooms/"+roomID.String()+"/members/bob-id", nil, "alice-token")

	// Then nothing is returned
	req.Equal(http.StatusNoContent, w.Code)
}

func TestRouter_UpdateMeReissuesToken(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	name := "alicia"
	token := services.Token("new-jwt")
	a.auth.EXPECT().UpdateMe(gomock.Any(), alice, auth.UpdateMeRequest{Username: &name}).
		Return(services.Profile{ID: alice.UserID, Username: name}, &token, nil).Times(1)

	// When the username changes
	w := a.do(http.MethodPut, "/api/auth/me", map[string]string{"username": name}, "alice-token")

	// Then a new token comes with the profile
	req.Equal(http.StatusOK, w.Code)
	var got updateMeResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal("new-jwt", got.Token)
	req.Equal(name, got.User.Username)
}

func TestRouter_RateLimit(t *testing.T) {
	req := require.New(t)
	limiter := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 2})
	a := newTestAPI(t, limiter)
	a.asAlice()
	a.chat.EXPECT().ListRooms(gomock.Any(), alice.UserID, true).Return(nil, nil).Times(2)

	// Given a burst of two requests
	for range 2 {
		w := a.do(http.MethodGet, "/api/rooms?mine=true", nil, "alice-token")
		req.Equal(http.StatusOK, w.Code)
	}

	// When a third one comes right after
	w := a.do(http.MethodGet, "/api/rooms?mine=true", nil, "alice-token")

	// Then it is throttled
	req.Equal(http.StatusTooManyRequests, w.Code)
	req.Equal("1", w.Header().Get("Retry-After"))
	req.Equal("RATE_LIMITED", decodeError(t, w).Code)
	req.Equal(1, limiter.size())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	limiter := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 1, CleanupInterval: time.Minute})
	limiter.now = func() time.Time { return now }

	// Given a user who was seen once
	req.True(limiter.allow("alice-id"))

	// When the entry has been idle for longer than twice the interval
	now = now.Add(3 * time.Minute)
	limiter.cleanup()

	// Then it is evicted
	req.Zero(limiter.size())
}

func TestRouter_Healthz(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)

	// When the health endpoint is called
	w := a.do(http.MethodGet, "/healthz", nil, "")

	// Then it answers without credential
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"status":"ok"`)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	req := require.New(t)
	a := newTestAPI(t, nil)
	a.asAlice()
	a.chat.EXPECT().ListRooms(gomock.Any(), alice.UserID, false).DoAndReturn(
		func(_ any, _ domain.UserID, _ bool) ([]domain.Room, error) { panic("boom") }).Times(1)

	// When a handler panics
	w := a.do(http.MethodGet, "/api/rooms", nil, "alice-token")

	// Then the client gets a generic 500
	req.Equal(http.StatusInternalServerError, w.Code)
	req.Equal("internal error", decodeError(t, w).Message)
}
