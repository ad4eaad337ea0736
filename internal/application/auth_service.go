package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/chatapp-auth/internal/domain/entity"
	repo "github.com/oksasatya/chatapp-auth/internal/domain/repository"
	"github.com/oksasatya/chatapp-auth/pkg/apperrors"
	"github.com/oksasatya/chatapp-auth/pkg/helpers"
)

// Service composes the hasher, signer, and repository into the register /
// login / refresh / revoke use cases. It is the sole writer of both
// credential and refresh-token records.
type Service struct {
	Repo       repo.CredentialRepository
	Hasher     *helpers.PasswordHasher
	JWT        *helpers.JWTManager
	Pub        *helpers.RabbitPublisher
	Logger     *logrus.Logger
	RefreshTTL time.Duration
}

func NewService(r repo.CredentialRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, pub *helpers.RabbitPublisher, logger *logrus.Logger, refreshTTL time.Duration) *Service {
	return &Service{
		Repo:       r,
		Hasher:     hasher,
		JWT:        jwt,
		Pub:        pub,
		Logger:     logger,
		RefreshTTL: refreshTTL,
	}
}

// AuthResult is the payload returned by Register and Login.
type AuthResult struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         entity.PublicUser `json:"user"`
}

// TokenPair is the payload returned by Refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserRegisteredEvent is published to the event queue after a successful
// registration commit.
type UserRegisteredEvent struct {
	Type         string    `json:"type"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Register creates a credential record and its first refresh-token record in
// one transaction. The email pre-check is advisory; the unique index is the
// authoritative guard, and a race that slips past the pre-check surfaces as
// the same conflict error. Token signing happens only after commit.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	user := &entity.UserCredential{Email: email, DisplayName: displayName}
	token := &entity.RefreshToken{}

	err := s.Repo.WithinTx(ctx, func(r repo.CredentialRepository) error {
		hash, err := s.Hasher.Hash(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if err := r.Create(ctx, user); err != nil {
			return err
		}
		*token = newRefreshTokenRecord(user.ID, s.RefreshTTL)
		return r.CreateRefreshToken(ctx, token)
	})
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal(err)
	}

	result, err := s.issueTokens(user, token.TokenID)
	if err != nil {
		return nil, err
	}
	s.publishRegistered(ctx, user)
	return result, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password return an identical error so emails cannot be
// enumerated through this endpoint.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	// A new record per login; a user may hold one per device.
	token := newRefreshTokenRecord(user.ID, s.RefreshTTL)
	if err := s.Repo.CreateRefreshToken(ctx, &token); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.issueTokens(user, token.TokenID)
}

// Refresh rotates a refresh token: the signed token is verified first, then
// matched against its stored record, then the record is swapped for a new
// one inside a transaction. The old token is unusable the moment the
// rotation commits.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	stored, err := s.Repo.FindRefreshTokenByTokenID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, apperrors.Internal(err)
	}
	if stored.Expired(time.Now()) {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.Repo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, apperrors.Internal(err)
	}

	next := &entity.RefreshToken{}
	err = s.Repo.WithinTx(ctx, func(r repo.CredentialRepository) error {
		if err := r.DeleteRefreshToken(ctx, stored.ID); err != nil {
			return err
		}
		*next = newRefreshTokenRecord(stored.UserID, s.RefreshTTL)
		return r.CreateRefreshToken(ctx, next)
	})
	if err != nil {
		// A concurrent rotation already consumed the record; at most one
		// caller wins.
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, apperrors.Internal(err)
	}

	access, _, err := s.JWT.SignAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, _, err := s.JWT.SignRefreshToken(user.ID, next.TokenID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Revoke deletes every refresh-token record for userID (logout everywhere).
// Revoking a user with no active tokens succeeds silently.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if err := s.Repo.DeleteRefreshTokensByUser(ctx, userID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func newRefreshTokenRecord(userID string, ttl time.Duration) entity.RefreshToken {
	return entity.RefreshToken{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}

func (s *Service) issueTokens(user *entity.UserCredential, tokenID string) (*AuthResult, error) {
	access, _, err := s.JWT.SignAccessToken(user.ID, user.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", user.ID).Error("sign access token failed")
		}
		return nil, apperrors.Internal(err)
	}
	refresh, _, err := s.JWT.SignRefreshToken(user.ID, tokenID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", user.ID).Error("sign refresh token failed")
		}
		return nil, apperrors.Internal(err)
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

// publishRegistered emits a user.registered event. Best effort: the
// registration already committed, so publish failures are logged and never
// surfaced to the caller.
func (s *Service) publishRegistered(ctx context.Context, user *entity.UserCredential) {
	if s.Pub == nil {
		return
	}
	event := UserRegisteredEvent{
		Type:         "user.registered",
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.Pub.PublishJSON(ctx, event); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Warn("publish user.registered failed")
	}
}
