// Package domain contains core concepts of the chat system.
// This file defines rooms and their visibility rules.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"room-chat/errors"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxRoomNameLength = 100

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(s); v {
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	default:
		return "", errors.ErrInvalidVisibility
	}
}

type Room struct {
	ID         RoomID
	Name       string
	Visibility Visibility
	CreatedAt  time.Time
}

func NewRoom(name string, visibility Visibility, at time.Time) (Room, error) {
	if err := ValidateRoomName(name); err != nil {
		return Room{}, err
	}
	if _, err := ParseVisibility(string(visibility)); err != nil {
		return Room{}, err
	}
	return Room{
		ID:         NewRoomID(),
		Name:       name,
		Visibility: visibility,
		CreatedAt:  at.UTC(),
	}, nil
}

func (r Room) IsPublic() bool { return r.Visibility == VisibilityPublic }

func ValidateRoomName(name string) error {
	n := utf8.RuneCountInString(name)
	if strings.TrimSpace(name) == "" || n > MaxRoomNameLength {
		return errors.ErrInvalidRoomName
	}
	return nil
}

// RoomPatch carries the optional fields of a room update.
type RoomPatch struct {
	Name       *string
	Visibility *Visibility
}

func (p RoomPatch) IsEmpty() bool {
	return p.Name == nil && p.Visibility == nil
}

func (p RoomPatch) Validate() error {
	if p.IsEmpty() {
		return errors.ErrEmptyPatch
	}
	if p.Name != nil {
		if err := ValidateRoomName(*p.Name); err != nil {
			return err
		}
	}
	if p.Visibility != nil {
		if _, err := ParseVisibility(string(*p.Visibility)); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns a copy of the room with the patch applied.
func (r Room) Apply(p RoomPatch) Room {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Visibility != nil {
		r.Visibility = *p.Visibility
	}
	return r
}

// Updates lists the changed fields the way room_updated events publish them.
func (p RoomPatch) Updates() map[string]any {
	updates := make(map[string]any, 2)
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Visibility != nil {
		updates["visibility"] = string(*p.Visibility)
	}
	return updates
}
