package entity

import (
	"time"
)

// UserCredential is the aggregate root for the credential domain.
// PasswordHash is a bcrypt hash and must never leave the service boundary;
// handlers return PublicUser projections instead.
type UserCredential struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing projection of a UserCredential.
type PublicUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Public strips everything that must not cross the service boundary.
func (u *UserCredential) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
