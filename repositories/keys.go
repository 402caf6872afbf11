package repositories

import (
	"fmt"
	"room-chat/domain"
	"strings"
	"time"
)

// Key layout
//
//	room:{room_id}                          -> roomRecord
//	member:{room_id}:{user_id}              -> membershipRecord
//	member_by_user:{user_id}:{room_id}      -> empty (index)
//	msg:{room_id}:{unix_nano_19}:{msg_id}   -> messageRecord
//	msgid:{msg_id}                          -> primary msg key
//	user:{user_id}                          -> userRecord
//	username:{lower(username)}              -> user_id
const (
	roomPrefix         = "room:"
	memberPrefix       = "member:"
	memberByUserPrefix = "member_by_user:"
	messagePrefix      = "msg:"
	messageIDPrefix    = "msgid:"
	userPrefix         = "user:"
	usernamePrefix     = "username:"
)

func roomKey(id domain.RoomID) []byte {
	return []byte(roomPrefix + id.String())
}

func memberKey(roomID domain.RoomID, userID domain.UserID) []byte {
	return []byte(memberPrefix + roomID.String() + ":" + userID.String())
}

func roomMembersPrefix(roomID domain.RoomID) []byte {
	return []byte(memberPrefix + roomID.String() + ":")
}

func memberByUserKey(userID domain.UserID, roomID domain.RoomID) []byte {
	return []byte(memberByUserPrefix + userID.String() + ":" + roomID.String())
}

func userRoomsPrefix(userID domain.UserID) []byte {
	return []byte(memberByUserPrefix + userID.String() + ":")
}

// messageKey is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Break ties between messages of the same nanosecond with the message id.
func messageKey(roomID domain.RoomID, sentAt time.Time, id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", messagePrefix, roomID.String(), sentAt.UnixNano(), id.String()))
}

func roomMessagesPrefix(roomID domain.RoomID) []byte {
	return []byte(messagePrefix + roomID.String() + ":")
}

func messageIDKey(id domain.MessageID) []byte {
	return []byte(messageIDPrefix + id.String())
}

func userKey(id domain.UserID) []byte {
	return []byte(userPrefix + id.String())
}

func usernameKey(username string) []byte {
	return []byte(usernamePrefix + strings.ToLower(username))
}

// Kind names the record family of a raw key, and whether its value is CBOR.
func Kind(key []byte) (kind string, cborValue bool) {
	k := string(key)
	switch {
	case strings.HasPrefix(k, roomPrefix):
		return "room", true
	case strings.HasPrefix(k, memberByUserPrefix):
		return "member_by_user", false
	case strings.HasPrefix(k, memberPrefix):
		return "member", true
	case strings.HasPrefix(k, messageIDPrefix):
		return "message_id", false
	case strings.HasPrefix(k, messagePrefix):
		return "message", true
	case strings.HasPrefix(k, usernamePrefix):
		return "username", false
	case strings.HasPrefix(k, userPrefix):
		return "user", true
	default:
		return "unknown", false
	}
}
