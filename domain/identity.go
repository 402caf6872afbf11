package domain

import "time"

const DefaultRoleClaim = "user"

// Identity is the verified, fixed-shape result of a credential check.
// It is produced once per connection or request and passed by value.
type Identity struct {
	UserID    UserID
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (i Identity) Ref() UserRef {
	return UserRef{ID: i.UserID, Username: i.Username}
}

func (i Identity) ExpiredAt(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
