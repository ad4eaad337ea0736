package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/chatapp-auth/internal/domain/entity"
	"github.com/oksasatya/chatapp-auth/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool the repository needs. pgx.Tx satisfies
// it as well, which is what lets WithinTx hand out a tx-bound repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CredentialRepository struct {
	db DB
}

func NewCredentialRepository(db DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, u *entity.UserCredential) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_credentials (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Email, u.DisplayName, u.PasswordHash)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		// The unique index on email is the authoritative guard against the
		// advisory-precheck race in Register.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repository.ErrEmailTaken
		}
		return fmt.Errorf("insert user credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.UserCredential, error) {
	return r.scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM user_credentials
		WHERE email = $1
	`, email))
}

func (r *CredentialRepository) FindByID(ctx context.Context, id string) (*entity.UserCredential, error) {
	return r.scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM user_credentials
		WHERE id = $1
	`, id))
}

func (r *CredentialRepository) scanUser(row pgx.Row) (*entity.UserCredential, error) {
	u := &entity.UserCredential{}
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *CredentialRepository) CreateRefreshToken(ctx context.Context, t *entity.RefreshToken) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.TokenID, t.ExpiresAt)

	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *CredentialRepository) FindRefreshTokenByTokenID(ctx context.Context, tokenID string) (*entity.RefreshToken, error) {
	t := &entity.RefreshToken{}
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_id, expires_at, created_at, updated_at
		FROM refresh_tokens
		WHERE token_id = $1
	`, tokenID)

	if err := row.Scan(&t.ID, &t.UserID, &t.TokenID, &t.ExpiresAt,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *CredentialRepository) DeleteRefreshToken(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteRefreshTokensByUser deletes every token row for userID. Deleting
// zero rows is not an error; revoke is idempotent.
func (r *CredentialRepository) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// WithinTx runs fn against a repository bound to a single transaction.
// The transaction is never held across anything but repository calls;
// signing and event publishing happen after commit in the caller.
func (r *CredentialRepository) WithinTx(ctx context.Context, fn func(repository.CredentialRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&CredentialRepository{db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ repository.CredentialRepository = (*CredentialRepository)(nil)
