package entity

import (
	"time"
)

// RefreshToken is the server-side record backing a signed refresh token.
// TokenID is the random correlation value embedded in the signed token's
// claims; it is never the row's primary key and never the token text.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenID   string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the record's absolute expiry has passed.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
