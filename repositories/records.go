package repositories

import (
	"room-chat/domain"
	"time"
)

// Records are the persisted shapes of the domain entities.
// Ids are kept as strings, times as unix nanoseconds.

type roomRecord struct {
	ID         string `cbor:"id"`
	Name       string `cbor:"name"`
	Visibility string `cbor:"visibility"`
	CreatedAt  int64  `cbor:"created_at"`
}

type membershipRecord struct {
	UserID   string `cbor:"user_id"`
	RoomID   string `cbor:"room_id"`
	Role     string `cbor:"role"`
	JoinedAt int64  `cbor:"joined_at"`
}

type messageRecord struct {
	ID       string `cbor:"id"`
	RoomID   string `cbor:"room_id"`
	AuthorID string `cbor:"author_id"`
	Content  string `cbor:"content"`
	SentAt   int64  `cbor:"sent_at"`
	EditedAt *int64 `cbor:"edited_at,omitempty"`
}

type userRecord struct {
	ID           string `cbor:"id"`
	Username     string `cbor:"username"`
	PasswordHash string `cbor:"password_hash"`
	Active       bool   `cbor:"active"`
	CreatedAt    int64  `cbor:"created_at"`
}

func fromRoom(r domain.Room) roomRecord {
	return roomRecord{
		ID:         r.ID.String(),
		Name:       r.Name,
		Visibility: string(r.Visibility),
		CreatedAt:  r.CreatedAt.UnixNano(),
	}
}

func (r roomRecord) toRoom() (domain.Room, error) {
	id, err := domain.ParseRoomID(r.ID)
	if err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:         id,
		Name:       r.Name,
		Visibility: domain.Visibility(r.Visibility),
		CreatedAt:  fromUnixNano(r.CreatedAt),
	}, nil
}

func fromMembership(m domain.Membership) membershipRecord {
	return membershipRecord{
		UserID:   m.UserID.String(),
		RoomID:   m.RoomID.String(),
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt.UnixNano(),
	}
}

func (r membershipRecord) toMembership() (domain.Membership, error) {
	roomID, err := domain.ParseRoomID(r.RoomID)
	if err != nil {
		return domain.Membership{}, err
	}
	return domain.Membership{
		UserID:   domain.UserID(r.UserID),
		RoomID:   roomID,
		Role:     domain.Role(r.Role),
		JoinedAt: fromUnixNano(r.JoinedAt),
	}, nil
}

func fromMessage(m domain.Message) messageRecord {
	record := messageRecord{
		ID:       m.ID.String(),
		RoomID:   m.RoomID.String(),
		AuthorID: m.AuthorID.String(),
		Content:  m.Content,
		SentAt:   m.SentAt.UnixNano(),
	}
	if m.EditedAt != nil {
		editedAt := m.EditedAt.UnixNano()
		record.EditedAt = &editedAt
	}
	return record
}

func (r messageRecord) toMessage() (domain.Message, error) {
	id, err := domain.ParseMessageID(r.ID)
	if err != nil {
		return domain.Message{}, err
	}
	roomID, err := domain.ParseRoomID(r.RoomID)
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:       id,
		RoomID:   roomID,
		AuthorID: domain.UserID(r.AuthorID),
		Content:  r.Content,
		SentAt:   fromUnixNano(r.SentAt),
	}
	if r.EditedAt != nil {
		editedAt := fromUnixNano(*r.EditedAt)
		message.EditedAt = &editedAt
	}
	return message, nil
}

func fromUser(u domain.User) userRecord {
	return userRecord{
		ID:           u.ID.String(),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt.UnixNano(),
	}
}

func (r userRecord) toUser() domain.User {
	return domain.User{
		ID:           domain.UserID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Active:       r.Active,
		CreatedAt:    fromUnixNano(r.CreatedAt),
	}
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
