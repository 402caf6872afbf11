// Package domain contains core concepts of the chat system.
// This file defines messages and their ordering key.
package domain

import (
	"room-chat/errors"
	"strings"
	"time"
	"unicode/utf8"
)

const DefaultMaxContentLength = 1000

// Message is a text posted by an author in a room.
// Only its content can change after creation.
type Message struct {
	ID       MessageID
	RoomID   RoomID
	AuthorID UserID
	Content  string
	SentAt   time.Time
	EditedAt *time.Time
}

func NewMessage(roomID RoomID, authorID UserID, content string, at time.Time) Message {
	return Message{
		ID:       NewMessageID(),
		RoomID:   roomID,
		AuthorID: authorID,
		Content:  content,
		SentAt:   at.UTC(),
	}
}

// OlderThan reports whether m sorts after other in a newest-first page:
// earlier SentAt, or same SentAt and a smaller id.
func (m Message) OlderThan(other Message) bool {
	if !m.SentAt.Equal(other.SentAt) {
		return m.SentAt.Before(other.SentAt)
	}
	return m.ID.String() < other.ID.String()
}

// ValidateContent rejects blank content and content over maxLength runes.
func ValidateContent(content string, maxLength int) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyContent
	}
	if maxLength > 0 && utf8.RuneCountInString(content) > maxLength {
		return errors.ErrContentTooLong
	}
	return nil
}
