package services

import (
	"context"
	"log/slog"
	"room-chat/auth"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/repositories"
	"room-chat/runtime"
	"room-chat/runtime/workers"
	"room-chat/search"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var testParams = auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) received() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func (s *recordingSink) types() []event.Type {
	var res []event.Type
	for _, e := range s.received() {
		res = append(res, e.Type())
	}
	return res
}

type fixture struct {
	uow         *repositories.UnitOfWork
	chat        *ChatService
	auth        *AuthService
	connections *runtime.Registry
	index       *search.Index
	telemetry   chan event.Event
}

func newFixture(t *testing.T, cfg ChatConfig, strictMessageRead bool) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	uow := repositories.NewUnitOfWork(db, log, repositories.DefaultMaxRetries)

	index, err := search.Open("", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	rooms := repositories.NewRoomRepository()
	members := repositories.NewMembershipRepository()
	messages := repositories.NewMessageRepository(log)
	users := repositories.NewUserRepository()

	connections := runtime.NewRegistry(log)
	telemetry := make(chan event.Event, 100)
	fanout := workers.NewEventFanout(log,
		[]contract.EventSink{search.NewIndexSink(index, log)},
		connections, telemetry, time.Second)

	chat := NewChatService(log, cfg, uow,
		NewRoomRegistry(rooms, members, messages, users),
		messages,
		NewPermissionEvaluator(rooms, members, strictMessageRead),
		connections, fanout, runtime.NewSequencer(), index)
	authService := NewAuthService(log, uow, users,
		auth.NewArgon2Hasher(testParams),
		auth.NewTokenManager("test-secret", "", time.Hour),
		index)

	return &fixture{
		uow:         uow,
		chat:        chat,
		auth:        authService,
		connections: connections,
		index:       index,
		telemetry:   telemetry,
	}
}

// user registers a user and returns the identity its token carries.
func (f *fixture) user(t *testing.T, username string) domain.Identity {
	t.Helper()
	token, _, err := f.auth.Register(context.Background(), auth.RegisterRequest{Username: username, Password: "password-" + username})
	require.NoError(t, err)
	identity, err := f.auth.Verify(context.Background(), token.String())
	require.NoError(t, err)
	return identity
}

// connect opens a live connection for the identity and returns its sink.
func (f *fixture) connect(t *testing.T, connID string, identity domain.Identity) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	_, err := f.chat.Connect(context.Background(), contract.ConnectionID(connID), identity, sink)
	require.NoError(t, err)
	return sink
}
