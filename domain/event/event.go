// Package event defines the events published to the live subscribers of a room.
package event

import (
	"room-chat/domain"
	"time"
)

type Type string

const (
	MessageCreatedType Type = "message_created"
	MessageUpdatedType Type = "message_updated"
	MessageDeletedType Type = "message_deleted"
	RoomUpdatedType    Type = "room_updated"
	RoomDeletedType    Type = "room_deleted"
	UserJoinedType     Type = "user_joined"
	UserLeftType       Type = "user_left"
)

// DomainEvent is scoped to exactly one room.
type DomainEvent interface {
	RoomID() domain.RoomID
	Type() Type
}

// MessagePayload is the wire shape shared by the three message events.
type MessagePayload struct {
	ID       domain.MessageID `json:"id"`
	Content  string           `json:"content,omitempty"`
	SentAt   time.Time        `json:"sent_at"`
	EditedAt *time.Time       `json:"edited_at,omitempty"`
	AuthorID domain.UserID    `json:"author_id"`
	Room     domain.RoomID    `json:"room_id"`
}

func NewMessagePayload(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:       m.ID,
		Content:  m.Content,
		SentAt:   m.SentAt,
		EditedAt: m.EditedAt,
		AuthorID: m.AuthorID,
		Room:     m.RoomID,
	}
}

type MessageCreated struct {
	MessagePayload
}

func (e MessageCreated) RoomID() domain.RoomID { return e.Room }
func (MessageCreated) Type() Type              { return MessageCreatedType }

type MessageUpdated struct {
	MessagePayload
}

func (e MessageUpdated) RoomID() domain.RoomID { return e.Room }
func (MessageUpdated) Type() Type              { return MessageUpdatedType }

// MessageDeleted carries no content.
type MessageDeleted struct {
	MessagePayload
}

func (e MessageDeleted) RoomID() domain.RoomID { return e.Room }
func (MessageDeleted) Type() Type              { return MessageDeletedType }

type RoomUpdated struct {
	Room    domain.RoomID  `json:"room_id"`
	Updates map[string]any `json:"updates"`
}

func (e RoomUpdated) RoomID() domain.RoomID { return e.Room }
func (RoomUpdated) Type() Type              { return RoomUpdatedType }

type RoomDeleted struct {
	Room domain.RoomID `json:"room_id"`
}

func (e RoomDeleted) RoomID() domain.RoomID { return e.Room }
func (RoomDeleted) Type() Type              { return RoomDeletedType }

type UserJoined struct {
	Room domain.RoomID  `json:"room_id"`
	User domain.UserRef `json:"user"`
}

func (e UserJoined) RoomID() domain.RoomID { return e.Room }
func (UserJoined) Type() Type              { return UserJoinedType }

type UserLeft struct {
	Room domain.RoomID  `json:"room_id"`
	User domain.UserRef `json:"user"`
}

func (e UserLeft) RoomID() domain.RoomID { return e.Room }
func (UserLeft) Type() Type              { return UserLeftType }

func NewMessageCreated(m domain.Message) MessageCreated {
	return MessageCreated{NewMessagePayload(m)}
}

func NewMessageUpdated(m domain.Message) MessageUpdated {
	return MessageUpdated{NewMessagePayload(m)}
}

func NewMessageDeleted(m domain.Message) MessageDeleted {
	p := NewMessagePayload(m)
	p.Content = ""
	return MessageDeleted{p}
}
