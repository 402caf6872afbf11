package search

import (
	"context"
	"log/slog"
	"room-chat/domain"
	"room-chat/domain/event"
)

// IndexSink keeps the index in line with the committed messages.
// It consumes every broadcast event, whatever the room.
type IndexSink struct {
	index IIndex
	log   *slog.Logger
}

func NewIndexSink(index IIndex, log *slog.Logger) IndexSink {
	return IndexSink{index: index, log: log}
}

func (s IndexSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageCreated:
		return s.index.IndexMessage(toMessage(evt.MessagePayload))
	case event.MessageUpdated:
		return s.index.IndexMessage(toMessage(evt.MessagePayload))
	case event.MessageDeleted:
		return s.index.DeleteMessages(evt.ID)
	case event.RoomDeleted:
		return s.index.DeleteRoom(ctx, evt.Room)
	default:
		s.log.Debug("Event not indexed", "type", e.Type())
		return nil
	}
}

func toMessage(p event.MessagePayload) domain.Message {
	return domain.Message{
		ID:       p.ID,
		RoomID:   p.Room,
		AuthorID: p.AuthorID,
		Content:  p.Content,
		SentAt:   p.SentAt,
		EditedAt: p.EditedAt,
	}
}
