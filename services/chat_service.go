package services

import (
	"context"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/repositories"
	"room-chat/search"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = repositories.MaxPageSize
)

// RoomSequencer serializes the commit-then-publish sections of one room.
type RoomSequencer interface {
	Do(roomID domain.RoomID, fn func() error) error
}

// Censor masks forbidden words and reports the words it found.
type Censor interface {
	Censor(content string) (string, []string)
}

type ChatConfig struct {
	MaxContentLength  int
	DefaultPageSize   int
	MaxPageSize       int
	PresenceOnConnect bool
}

func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		MaxContentLength:  domain.DefaultMaxContentLength,
		DefaultPageSize:   DefaultPageSize,
		MaxPageSize:       MaxPageSize,
		PresenceOnConnect: true,
	}
}

// ChatService is the core flow of the chat: every mutation is authorized,
// committed, then published to the live subscribers of its room.
// Publishing happens outside the transaction and under the room sequencer,
// so the publish order of a room is its commit order.
type ChatService struct {
	log         *slog.Logger
	cfg         ChatConfig
	uow         repositories.IUnitOfWork
	rooms       *RoomRegistry
	messages    repositories.IMessageRepository
	permissions IPermissionEvaluator
	connections contract.IRegistry
	broadcaster contract.Broadcaster
	sequencer   RoomSequencer
	index       search.IIndex
	censor      Censor
	telemetry   chan<- event.Event
	now         func() time.Time
}

func NewChatService(log *slog.Logger, cfg ChatConfig,
	uow repositories.IUnitOfWork,
	rooms *RoomRegistry,
	messages repositories.IMessageRepository,
	permissions IPermissionEvaluator,
	connections contract.IRegistry,
	broadcaster contract.Broadcaster,
	sequencer RoomSequencer,
	index search.IIndex) *ChatService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 || cfg.MaxPageSize > MaxPageSize {
		cfg.MaxPageSize = MaxPageSize
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = domain.DefaultMaxContentLength
	}
	return &ChatService{
		log:         log,
		cfg:         cfg,
		uow:         uow,
		rooms:       rooms,
		messages:    messages,
		permissions: permissions,
		connections: connections,
		broadcaster: broadcaster,
		sequencer:   sequencer,
		index:       index,
		now:         time.Now,
	}
}

// WithModeration censors message content before it is persisted.
// Hits are reported on the telemetry channel.
func (s *ChatService) WithModeration(censor Censor, telemetry chan<- event.Event) *ChatService {
	s.censor = censor
	s.telemetry = telemetry
	return s
}

func (s *ChatService) WithClock(now func() time.Time) *ChatService {
	s.now = now
	return s
}

// publishHooks mirror a committed mutation into the connection registry,
// before or after its events are published.
type publishHooks struct {
	beforePublish func()
	afterPublish  func()
}

// commitAndPublish runs mutate in a write transaction and, once committed,
// publishes the events it returned, all while holding the room sequencer.
func (s *ChatService) commitAndPublish(ctx context.Context, roomID domain.RoomID,
	mutate func(txn repositories.Txn) ([]event.DomainEvent, error),
	hooks publishHooks) error {
	return s.sequencer.Do(roomID, func() error {
		var events []event.DomainEvent
		err := s.uow.Update(ctx, func(txn repositories.Txn) error {
			var err error
			events, err = mutate(txn)
			return err
		})
		if err != nil {
			return err
		}
		if hooks.beforePublish != nil {
			hooks.beforePublish()
		}
		for _, e := range events {
			s.broadcaster.Broadcast(ctx, e)
		}
		if hooks.afterPublish != nil {
			hooks.afterPublish()
		}
		return nil
	})
}

func (s *ChatService) moderate(roomID domain.RoomID, content string) string {
	if s.censor == nil {
		return content
	}
	censored, words := s.censor.Censor(content)
	if len(words) > 0 {
		s.log.Debug("Message censored", "room_id", roomID.String(), "words", len(words))
		event.Emit(s.telemetry, event.NewEvent(event.CensorshipHitType, event.Censored{Room: roomID, Words: words}))
	}
	return censored
}
