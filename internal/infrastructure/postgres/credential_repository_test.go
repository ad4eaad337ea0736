package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/chatapp-auth/internal/domain/entity"
	"github.com/oksasatya/chatapp-auth/internal/domain/repository"
)

func TestCredentialRepository_Create(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
					AddRow("11111111-1111-1111-1111-111111111111", now, now)
				mock.ExpectQuery(`INSERT INTO user_credentials`).
					WithArgs("a@x.com", "Ann", "$2a$13$hash").
					WillReturnRows(rows)
			},
		},
		{
			name: "unique violation maps to ErrEmailTaken",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO user_credentials`).
					WithArgs("a@x.com", "Ann", "$2a$13$hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "user_credentials_email_key"})
			},
			wantErr: repository.ErrEmailTaken,
		},
		{
			name: "other errors pass through wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO user_credentials`).
					WithArgs("a@x.com", "Ann", "$2a$13$hash").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewCredentialRepository(mock)
			u := &entity.UserCredential{Email: "a@x.com", DisplayName: "Ann", PasswordHash: "$2a$13$hash"}
			err = repo.Create(context.Background(), u)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, repository.ErrEmailTaken) {
					assert.ErrorIs(t, err, repository.ErrEmailTaken)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "11111111-1111-1111-1111-111111111111", u.ID)
				assert.Equal(t, now, u.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestCredentialRepository_FindByEmail(t *testing.T) {
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "created_at", "updated_at"}).
		AddRow("11111111-1111-1111-1111-111111111111", "a@x.com", "Ann", "$2a$13$hash", now, now)
	mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at, updated_at\s+FROM user_credentials\s+WHERE email =`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	repo := NewCredentialRepository(mock)
	u, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "Ann", u.DisplayName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_FindByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at, updated_at\s+FROM user_credentials\s+WHERE email =`).
		WithArgs("missing@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "created_at", "updated_at"}))

	repo := NewCredentialRepository(mock)
	_, err = repo.FindByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_DeleteRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE id =`).
		WithArgs("row-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewCredentialRepository(mock)
	require.NoError(t, repo.DeleteRefreshToken(context.Background(), "row-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_DeleteRefreshToken_AlreadyGone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE id =`).
		WithArgs("row-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewCredentialRepository(mock)
	err = repo.DeleteRefreshToken(context.Background(), "row-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_DeleteRefreshTokensByUser_ZeroRowsOK(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id =`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewCredentialRepository(mock)
	assert.NoError(t, repo.DeleteRefreshTokensByUser(context.Background(), "user-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_WithinTx_Commit(t *testing.T) {
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs("user-1", "tok-1", now.Add(time.Hour)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("row-1", now, now))
	mock.ExpectCommit()

	repo := NewCredentialRepository(mock)
	err = repo.WithinTx(context.Background(), func(r repository.CredentialRepository) error {
		return r.CreateRefreshToken(context.Background(), &entity.RefreshToken{
			UserID:    "user-1",
			TokenID:   "tok-1",
			ExpiresAt: now.Add(time.Hour),
		})
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_WithinTx_RollbackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewCredentialRepository(mock)
	err = repo.WithinTx(context.Background(), func(r repository.CredentialRepository) error {
		return r.CreateRefreshToken(context.Background(), &entity.RefreshToken{
			UserID:  "user-1",
			TokenID: "tok-1",
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.NoError(t, mock.ExpectationsWereMet())
}
