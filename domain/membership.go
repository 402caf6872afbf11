package domain

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Membership is the relation between a user and a room.
// There is at most one Membership per (UserID, RoomID).
type Membership struct {
	UserID   UserID
	RoomID   RoomID
	Role     Role
	JoinedAt time.Time
}

func NewMembership(userID UserID, roomID RoomID, role Role, at time.Time) Membership {
	return Membership{UserID: userID, RoomID: roomID, Role: role, JoinedAt: at.UTC()}
}

func (m Membership) IsAdmin() bool { return m.Role == RoleAdmin }

// Member is a membership enriched with the public profile of the user.
type Member struct {
	Membership
	Username string
}
