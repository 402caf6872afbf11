package client

import (
	"sort"
	"time"
)

// Timeline builds the local view of one room from its history and live events.
// Messages are kept in sending order and deduplicated by id.
type Timeline struct {
	RoomID   string
	messages []Message
	deleted  bool
}

func NewTimeline(roomID string) *Timeline {
	return &Timeline{RoomID: roomID}
}

// Seed loads a page of history, in any order.
func (t *Timeline) Seed(history []Message) {
	for _, m := range history {
		t.upsert(m)
	}
}

// Apply folds a live event into the timeline and reports whether it changed.
// Events of other rooms are ignored.
func (t *Timeline) Apply(e Event) (bool, error) {
	switch e.Type {
	case "message_created", "message_updated":
		var m Message
		if err := e.Decode(&m); err != nil {
			return false, err
		}
		if m.RoomID != t.RoomID {
			return false, nil
		}
		return t.upsert(m), nil
	case "message_deleted":
		var m Message
		if err := e.Decode(&m); err != nil {
			return false, err
		}
		if m.RoomID != t.RoomID {
			return false, nil
		}
		return t.remove(m.ID), nil
	case "room_deleted":
		var p struct {
			RoomID string `json:"room_id"`
		}
		if err := e.Decode(&p); err != nil {
			return false, err
		}
		if p.RoomID != t.RoomID {
			return false, nil
		}
		t.messages = nil
		t.deleted = true
		return true, nil
	default:
		return false, nil
	}
}

func (t *Timeline) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

func (t *Timeline) Deleted() bool { return t.deleted }

func (t *Timeline) upsert(m Message) bool {
	for i, existing := range t.messages {
		if existing.ID == m.ID {
			if existing.Content == m.Content && equalTime(existing.EditedAt, m.EditedAt) {
				return false
			}
			t.messages[i] = m
			return true
		}
	}
	i := sort.Search(len(t.messages), func(i int) bool { return before(m, t.messages[i]) })
	t.messages = append(t.messages, Message{})
	copy(t.messages[i+1:], t.messages[i:])
	t.messages[i] = m
	return true
}

func (t *Timeline) remove(id string) bool {
	for i, existing := range t.messages {
		if existing.ID == id {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// before orders by sending time, ids break ties.
func before(a, b Message) bool {
	if !a.SentAt.Equal(b.SentAt) {
		return a.SentAt.Before(b.SentAt)
	}
	return a.ID < b.ID
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
