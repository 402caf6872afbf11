package services

import (
	"context"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"room-chat/repositories"
	"room-chat/search"
)

// MessagePage is one page of history, newest first.
// NextBefore is the cursor of the following page, nil on the last one.
type MessagePage struct {
	Messages   []domain.Message
	NextBefore *domain.MessageID
}

// SendMessage checks that the room exists and the sender is a member,
// persists the message and publishes message_created.
func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	if err := domain.ValidateContent(cmd.Content, s.cfg.MaxContentLength); err != nil {
		return domain.Message{}, err
	}
	content := s.moderate(cmd.Room, cmd.Content)

	var message domain.Message
	err := s.commitAndPublish(ctx, cmd.Room, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		if err := s.permissions.CanSend(txn, cmd.Room, cmd.UserID); err != nil {
			return nil, err
		}
		// Stamped under the room sequencer, so history order follows publish order
		at := cmd.CreatedAt
		if at.IsZero() {
			at = s.now()
		}
		message = domain.NewMessage(cmd.Room, cmd.UserID, content, at)
		if err := s.messages.CreateMessage(txn, message); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.NewMessageCreated(message)}, nil
	}, publishHooks{})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// GetMessage reads one message by id. Membership is only required
// when strict message reads are configured.
func (s *ChatService) GetMessage(ctx context.Context, userID domain.UserID, id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		if message, err = s.messages.GetMessage(txn, id); err != nil {
			return err
		}
		return s.permissions.CanReadMessage(txn, message, userID)
	})
	return message, err
}

// EditMessage replaces the content of a message, author only.
func (s *ChatService) EditMessage(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error) {
	if err := domain.ValidateContent(cmd.Content, s.cfg.MaxContentLength); err != nil {
		return domain.Message{}, err
	}
	roomID, err := s.roomOf(ctx, cmd.Message)
	if err != nil {
		return domain.Message{}, err
	}
	content := s.moderate(roomID, cmd.Content)

	var updated domain.Message
	err = s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		message, err := s.messages.GetMessage(txn, cmd.Message)
		if err != nil {
			return nil, err
		}
		if err := s.permissions.CanEdit(message, cmd.UserID); err != nil {
			return nil, err
		}
		if updated, err = s.messages.UpdateContent(txn, cmd.Message, content, s.now()); err != nil {
			return nil, err
		}
		return []event.DomainEvent{event.NewMessageUpdated(updated)}, nil
	}, publishHooks{})
	return updated, err
}

// DeleteMessage removes a message, author or room admin only.
func (s *ChatService) DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	roomID, err := s.roomOf(ctx, cmd.Message)
	if err != nil {
		return err
	}
	return s.commitAndPublish(ctx, roomID, func(txn repositories.Txn) ([]event.DomainEvent, error) {
		message, err := s.messages.GetMessage(txn, cmd.Message)
		if err != nil {
			return nil, err
		}
		if err := s.permissions.CanDelete(txn, message, cmd.UserID); err != nil {
			return nil, err
		}
		deleted, err := s.messages.DeleteMessage(txn, cmd.Message)
		if err != nil {
			return nil, err
		}
		if !deleted {
			return nil, errors.ErrMessageNotFound
		}
		return []event.DomainEvent{event.NewMessageDeleted(message)}, nil
	}, publishHooks{})
}

func (s *ChatService) roomOf(ctx context.Context, id domain.MessageID) (domain.RoomID, error) {
	var roomID domain.RoomID
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		message, err := s.messages.GetMessage(txn, id)
		roomID = message.RoomID
		return err
	})
	return roomID, err
}

// GetMessages returns a page of the room history strictly older than the cursor.
// A zero limit means the default page size.
func (s *ChatService) GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) (MessagePage, error) {
	limit := cmd.Limit
	if limit == 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit < repositories.MinPageSize || limit > s.cfg.MaxPageSize {
		return MessagePage{}, errors.ErrInvalidLimit
	}

	var page MessagePage
	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		room, err := s.rooms.GetRoom(txn, cmd.Room)
		if err != nil {
			return err
		}
		if err := s.permissions.CanReadRoom(txn, room, cmd.UserID); err != nil {
			return err
		}
		page.Messages, err = s.messages.PaginateBefore(txn, cmd.Room, cmd.Before, limit)
		return err
	})
	if err != nil {
		return MessagePage{}, err
	}
	if len(page.Messages) == limit {
		last := page.Messages[len(page.Messages)-1].ID
		page.NextBefore = &last
	}
	return page, nil
}

// SearchMessages runs a full-text search inside one readable room.
// The raw query accepts a "--lang xx" flag. Hits whose message is gone are skipped.
func (s *ChatService) SearchMessages(ctx context.Context, userID domain.UserID, roomID domain.RoomID,
	rawQuery string, limit int) ([]domain.Message, error) {
	query := search.ParseMessageQuery(rawQuery)
	if limit > 0 {
		query.Limit = min(limit, s.cfg.MaxPageSize)
	}

	err := s.uow.View(ctx, func(txn repositories.Txn) error {
		room, err := s.rooms.GetRoom(txn, roomID)
		if err != nil {
			return err
		}
		return s.permissions.CanReadRoom(txn, room, userID)
	})
	if err != nil {
		return nil, err
	}

	hits, err := s.index.SearchMessages(ctx, []domain.RoomID{roomID}, query)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(hits))
	err = s.uow.View(ctx, func(txn repositories.Txn) error {
		for _, hit := range hits {
			message, err := s.messages.GetMessage(txn, hit.ID)
			if errors.Is(err, errors.ErrMessageNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

// ReindexMessages feeds the whole history to the search index, used at boot
// when the index lives in memory.
func (s *ChatService) ReindexMessages(ctx context.Context) (int, error) {
	var rooms []domain.Room
	if err := s.uow.View(ctx, func(txn repositories.Txn) error {
		var err error
		rooms, err = s.rooms.AllRooms(txn)
		return err
	}); err != nil {
		return 0, err
	}

	indexed := 0
	for _, room := range rooms {
		var before *domain.MessageID
		for {
			var page []domain.Message
			if err := s.uow.View(ctx, func(txn repositories.Txn) error {
				var err error
				page, err = s.messages.PaginateBefore(txn, room.ID, before, repositories.MaxPageSize)
				return err
			}); err != nil {
				return indexed, err
			}
			for _, message := range page {
				if err := s.index.IndexMessage(message); err != nil {
					return indexed, err
				}
				indexed++
			}
			if len(page) < repositories.MaxPageSize {
				break
			}
			last := page[len(page)-1].ID
			before = &last
		}
	}
	return indexed, nil
}
