package repositories

import (
	"room-chat/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	roomID := domain.NewRoomID()
	messageID := domain.NewMessageID()
	userID := domain.NewUserID()

	tests := []struct {
		key      []byte
		wantKind string
		wantCBOR bool
	}{
		{roomKey(roomID), "room", true},
		{memberKey(roomID, userID), "member", true},
		{memberByUserKey(userID, roomID), "member_by_user", false},
		{messageKey(roomID, time.Now(), messageID), "message", true},
		{messageIDKey(messageID), "message_id", false},
		{userKey(userID), "user", true},
		{usernameKey("Alice"), "username", false},
		{[]byte("other"), "unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			req := require.New(t)
			kind, cborValue := Kind(tt.key)
			req.Equal(tt.wantKind, kind)
			req.Equal(tt.wantCBOR, cborValue)
		})
	}
}

func TestDiagnose(t *testing.T) {
	req := require.New(t)

	// Given an encoded record
	data, err := encode(map[string]int{"a": 1})
	req.NoError(err)

	// When it is diagnosed
	diag, err := Diagnose(data)

	// Then it is readable
	req.NoError(err)
	req.Equal(`{"a": 1}`, diag)
}
