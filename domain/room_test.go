package domain

import (
	"room-chat/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRoom_Valid(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	room, err := NewRoom("general", VisibilityPublic, at)

	req.NoError(err)
	req.Equal("general", room.Name)
	req.True(room.IsPublic())
	req.Equal(at, room.CreatedAt)
	req.NotEqual(RoomID{}, room.ID)
}

func TestNewRoom_RejectsInvalidName(t *testing.T) {
	req := require.New(t)

	_, err := NewRoom("", VisibilityPublic, time.Now())
	req.ErrorIs(err, errors.ErrInvalidRoomName)
	req.ErrorIs(err, errors.ErrValidation)

	_, err = NewRoom("   \t", VisibilityPublic, time.Now())
	req.ErrorIs(err, errors.ErrInvalidRoomName)

	_, err = NewRoom(strings.Repeat("a", MaxRoomNameLength+1), VisibilityPublic, time.Now())
	req.ErrorIs(err, errors.ErrInvalidRoomName)

	_, err = NewRoom(strings.Repeat("é", MaxRoomNameLength), VisibilityPrivate, time.Now())
	req.NoError(err)
}

func TestNewRoom_RejectsUnknownVisibility(t *testing.T) {
	req := require.New(t)

	_, err := NewRoom("general", Visibility("secret"), time.Now())

	req.ErrorIs(err, errors.ErrInvalidVisibility)
}

func TestRoomPatch_EmptyIsRejected(t *testing.T) {
	req := require.New(t)

	req.ErrorIs(RoomPatch{}.Validate(), errors.ErrEmptyPatch)
}

func TestRoom_Apply_OnlyChangesPatchedFields(t *testing.T) {
	req := require.New(t)
	room, err := NewRoom("general", VisibilityPublic, time.Now())
	req.NoError(err)
	private := VisibilityPrivate

	// Given a patch with only the visibility
	patch := RoomPatch{Visibility: &private}
	req.NoError(patch.Validate())

	// When it is applied
	updated := room.Apply(patch)

	// Then the name is untouched
	req.Equal("general", updated.Name)
	req.False(updated.IsPublic())
	req.Equal(room.ID, updated.ID)
	req.Equal(map[string]any{"visibility": "private"}, patch.Updates())
}

func TestParseRoomID(t *testing.T) {
	req := require.New(t)
	id := NewRoomID()

	parsed, err := ParseRoomID(id.String())
	req.NoError(err)
	req.Equal(id, parsed)

	_, err = ParseRoomID("not-a-uuid")
	req.ErrorIs(err, errors.ErrInvalidID)
}
