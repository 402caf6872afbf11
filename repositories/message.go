//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"log/slog"
	"room-chat/domain"
	"room-chat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

type IMessageRepository interface {
	CreateMessage(txn Txn, message domain.Message) error
	GetMessage(txn Txn, id domain.MessageID) (domain.Message, error)
	UpdateContent(txn Txn, id domain.MessageID, content string, editedAt time.Time) (domain.Message, error)
	DeleteMessage(txn Txn, id domain.MessageID) (bool, error)
	PaginateBefore(txn Txn, roomID domain.RoomID, before *domain.MessageID, limit int) ([]domain.Message, error)
	DeleteRoomMessages(txn Txn, roomID domain.RoomID) ([]domain.MessageID, error)
}

type MessageRepository struct {
	log *slog.Logger
}

func NewMessageRepository(log *slog.Logger) MessageRepository {
	return MessageRepository{log: log}
}

// CreateMessage persists a message under its ordering key and
// indexes the key by message id for direct lookups.
func (m MessageRepository) CreateMessage(txn Txn, message domain.Message) error {
	key := messageKey(message.RoomID, message.SentAt, message.ID)
	if err := txn.set(key, fromMessage(message)); err != nil {
		return err
	}
	return txn.setRaw(messageIDKey(message.ID), key)
}

// GetMessage returns ErrMessageNotFound when no message has this id.
func (m MessageRepository) GetMessage(txn Txn, id domain.MessageID) (domain.Message, error) {
	message, _, err := m.lookup(txn, id)
	return message, err
}

func (m MessageRepository) UpdateContent(txn Txn, id domain.MessageID, content string, editedAt time.Time) (domain.Message, error) {
	message, key, err := m.lookup(txn, id)
	if err != nil {
		return domain.Message{}, err
	}
	editedAt = editedAt.UTC()
	message.Content = content
	message.EditedAt = &editedAt
	if err = txn.set(key, fromMessage(message)); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// DeleteMessage reports false when the message did not exist.
func (m MessageRepository) DeleteMessage(txn Txn, id domain.MessageID) (bool, error) {
	_, key, err := m.lookup(txn, id)
	if errors.Is(err, errors.ErrMessageNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err = txn.delete(key); err != nil {
		return false, err
	}
	return true, txn.delete(messageIDKey(id))
}

// PaginateBefore returns up to limit messages of the room, newest first.
// With a cursor, only messages strictly older than the cursor message are returned.
// The padded timestamp in the key gives the time order, the message id breaks ties,
// so a reverse prefix scan yields (SentAt, ID) descending.
func (m MessageRepository) PaginateBefore(txn Txn, roomID domain.RoomID, before *domain.MessageID, limit int) ([]domain.Message, error) {
	limit = clampLimit(limit)
	prefix := roomMessagesPrefix(roomID)

	// Without cursor we start after the last possible key of the room
	seekKey := append(append([]byte{}, prefix...), 0xFF)
	if before != nil {
		cursor, cursorKey, err := m.lookup(txn, *before)
		if err != nil {
			return nil, err
		}
		if cursor.RoomID != roomID {
			return nil, errors.ErrInvalidCursor
		}
		seekKey = cursorKey
	}

	options := badger.DefaultIteratorOptions
	options.Reverse = true
	options.Prefix = prefix
	it := txn.txn.NewIterator(options)
	defer it.Close()

	it.Seek(seekKey)
	if before != nil && it.ValidForPrefix(prefix) && bytes.Equal(it.Item().Key(), seekKey) {
		it.Next()
	}

	messages := make([]domain.Message, 0, limit)
	for ; it.ValidForPrefix(prefix); it.Next() {
		if len(messages) == limit {
			m.log.Debug("Maximum of messages reached", "limit", limit)
			break
		}
		var record messageRecord
		if err := it.Item().Value(func(val []byte) error {
			return decode(val, &record)
		}); err != nil {
			return nil, errors.Store(err)
		}
		message, err := record.toMessage()
		if err != nil {
			return nil, errors.Store(err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// DeleteRoomMessages removes every message of the room and returns their ids.
func (m MessageRepository) DeleteRoomMessages(txn Txn, roomID domain.RoomID) ([]domain.MessageID, error) {
	var ids []domain.MessageID
	var keys [][]byte
	err := txn.scan(roomMessagesPrefix(roomID), func(key, value []byte) error {
		var record messageRecord
		if err := decode(value, &record); err != nil {
			return errors.Store(err)
		}
		id, err := domain.ParseMessageID(record.ID)
		if err != nil {
			return errors.Store(err)
		}
		ids = append(ids, id)
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		if err = txn.delete(key); err != nil {
			return nil, err
		}
		if err = txn.delete(messageIDKey(ids[i])); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// lookup resolves the primary key of a message through the id index.
func (m MessageRepository) lookup(txn Txn, id domain.MessageID) (domain.Message, []byte, error) {
	key, found, err := txn.getRaw(messageIDKey(id))
	if err != nil {
		return domain.Message{}, nil, err
	}
	if !found {
		return domain.Message{}, nil, errors.ErrMessageNotFound
	}
	var record messageRecord
	found, err = txn.get(key, &record)
	if err != nil {
		return domain.Message{}, nil, err
	}
	if !found {
		m.log.Warn("Dangling message index", "message_id", id.String())
		return domain.Message{}, nil, errors.ErrMessageNotFound
	}
	message, err := record.toMessage()
	if err != nil {
		return domain.Message{}, nil, errors.Store(err)
	}
	return message, key, nil
}

func clampLimit(limit int) int {
	if limit < MinPageSize {
		return MinPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
