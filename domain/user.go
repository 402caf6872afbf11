package domain

import "time"

const MaxUsernameLength = 50

type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// UserRef is the public part of a user carried by presence events.
type UserRef struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// UserPatch carries the optional fields of a profile update.
type UserPatch struct {
	Username *string
	Password *string
}

func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Password == nil
}
