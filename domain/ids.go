package domain

import (
	"room-chat/errors"

	"github.com/google/uuid"
)

// RoomID identifies a room. It is rendered as a canonical UUID string.
type RoomID uuid.UUID

// MessageID identifies a message. Its canonical string form is the
// tie-break of the message ordering key.
type MessageID uuid.UUID

// UserID identifies a user account.
type UserID string

func NewRoomID() RoomID { return RoomID(uuid.New()) }

func NewMessageID() MessageID { return MessageID(uuid.New()) }

func NewUserID() UserID { return UserID(uuid.NewString()) }

func ParseRoomID(s string) (RoomID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RoomID{}, errors.ErrInvalidID
	}
	return RoomID(id), nil
}

func ParseMessageID(s string) (MessageID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MessageID{}, errors.ErrInvalidID
	}
	return MessageID(id), nil
}

func (id RoomID) String() string { return uuid.UUID(id).String() }

func (id RoomID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RoomID) UnmarshalText(b []byte) error {
	parsed, err := ParseRoomID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id MessageID) String() string { return uuid.UUID(id).String() }

func (id MessageID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *MessageID) UnmarshalText(b []byte) error {
	parsed, err := ParseMessageID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id UserID) String() string { return string(id) }
