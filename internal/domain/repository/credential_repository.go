package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/chatapp-auth/internal/domain/entity"
)

// Storage-level sentinels. The application layer maps these onto the error
// taxonomy; raw driver errors never cross the repository boundary.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// CredentialRepository defines persistence for user credentials and refresh
// token records. It is the only write path for both entities.
//
// Email lookups are case-sensitive: values are stored and compared verbatim.
type CredentialRepository interface {
	Create(ctx context.Context, u *entity.UserCredential) error
	FindByEmail(ctx context.Context, email string) (*entity.UserCredential, error)
	FindByID(ctx context.Context, id string) (*entity.UserCredential, error)

	CreateRefreshToken(ctx context.Context, t *entity.RefreshToken) error
	FindRefreshTokenByTokenID(ctx context.Context, tokenID string) (*entity.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error

	// WithinTx runs fn with a repository bound to a single transaction.
	// Any error from fn rolls the whole transaction back.
	WithinTx(ctx context.Context, fn func(r CredentialRepository) error) error
}
