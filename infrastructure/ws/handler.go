//go:generate go run go.uber.org/mock/mockgen -source=handler.go -destination=../../mocks/mock_ws.go -package=mocks
// Package ws serves the live websocket endpoint.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"room-chat/auth"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/errors"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// ChatSessions is the part of the chat service a connection drives.
type ChatSessions interface {
	Connect(ctx context.Context, connID contract.ConnectionID, identity domain.Identity, sink contract.EventSink) ([]domain.RoomID, error)
	Disconnect(ctx context.Context, connID contract.ConnectionID, identity domain.Identity)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	EditMessage(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error
	JoinRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) (domain.Membership, error)
	LeaveRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (domain.Identity, error)
}

// ConnectionMetrics is what the handler reports about connections and commands.
type ConnectionMetrics interface {
	ConnectionOpened()
	ConnectionClosed()
	RecordCommand(action, outcome string)
}

type Config struct {
	BufferSize     int
	Heartbeat      Heartbeat
	OriginPatterns []string
}

type Handler struct {
	log      *slog.Logger
	cfg      Config
	chat     ChatSessions
	verifier Verifier
	metrics  ConnectionMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	conns  map[contract.ConnectionID]*Connection
}

func NewHandler(log *slog.Logger, cfg Config, chat ChatSessions, verifier Verifier, metrics ConnectionMetrics) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		log:      log.With("component", "ws"),
		cfg:      cfg,
		chat:     chat,
		verifier: verifier,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[contract.ConnectionID]*Connection),
	}
}

// ServeHTTP authenticates before the upgrade: a bad credential never opens a socket.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := auth.BearerToken(r.Header.Get("Authorization"))
	if credential == "" {
		credential = r.URL.Query().Get("token")
	}
	if credential == "" {
		writeError(w, errors.ErrMissingToken)
		return
	}
	identity, err := h.verifier.Verify(r.Context(), credential)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.admit() {
		writeError(w, errors.ErrShuttingDown)
		return
	}
	defer h.wg.Done()

	opts := &websocket.AcceptOptions{OriginPatterns: h.cfg.OriginPatterns}
	if len(h.cfg.OriginPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}
	wsConn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Warn("Upgrade failed", "error", err)
		return
	}

	connID := contract.ConnectionID(uuid.NewString())
	conn := NewConnection(h.ctx, h.log, connID, identity, wsConn, h.cfg.BufferSize, h.cfg.Heartbeat,
		func(ctx context.Context, cmd domain.Command) error {
			return h.dispatch(ctx, identity, cmd)
		}).OnResult(h.recordResult)

	if _, err := h.chat.Connect(h.ctx, connID, identity, conn); err != nil {
		h.log.Error("Unable to register connection", "conn_id", connID, "error", err)
		wsConn.Close(websocket.StatusInternalError, "registration failed")
		return
	}

	h.track(conn)
	h.metrics.ConnectionOpened()
	h.log.Info("Connection opened", "conn_id", connID, "user_id", identity.UserID)

	conn.Run()

	h.chat.Disconnect(context.WithoutCancel(h.ctx), connID, identity)
	h.untrack(connID)
	h.metrics.ConnectionClosed()
	h.log.Info("Connection closed", "conn_id", connID, "user_id", identity.UserID)
}

func (h *Handler) dispatch(ctx context.Context, identity domain.Identity, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.SendMessageCommand:
		_, err := h.chat.SendMessage(ctx, c)
		return err
	case domain.EditMessageCommand:
		_, err := h.chat.EditMessage(ctx, c)
		return err
	case domain.DeleteMessageCommand:
		return h.chat.DeleteMessage(ctx, c)
	case domain.JoinRoomCommand:
		_, err := h.chat.JoinRoom(ctx, identity, c.Room)
		return err
	case domain.LeaveRoomCommand:
		return h.chat.LeaveRoom(ctx, identity, c.Room)
	default:
		return errors.ErrUnknownAction
	}
}

func (h *Handler) recordResult(action domain.Action, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errors.Code(err)
	}
	if action == "" {
		action = "unknown"
	}
	h.metrics.RecordCommand(string(action), outcome)
}

// admit counts a new socket unless Shutdown has started.
// The caller releases it with wg.Done.
func (h *Handler) admit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.wg.Add(1)
	return true
}

func (h *Handler) track(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID()] = conn
}

func (h *Handler) untrack(id contract.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// ConnectionCount reports the live sockets.
func (h *Handler) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every live connection and waits for them to be unregistered.
// Sockets arriving afterwards are refused with a 503.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errors.ToBody(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	_ = json.NewEncoder(w).Encode(body)
}
