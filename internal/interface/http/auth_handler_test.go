package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/chatapp-auth/internal/application"
	"github.com/oksasatya/chatapp-auth/internal/domain/entity"
	repo "github.com/oksasatya/chatapp-auth/internal/domain/repository"
	"github.com/oksasatya/chatapp-auth/pkg/helpers"
	"github.com/oksasatya/chatapp-auth/pkg/validation"
)

// stubRepo is a minimal in-memory CredentialRepository for wiring a real
// Service under the handlers.
type stubRepo struct {
	users  map[string]*entity.UserCredential
	tokens map[string]*entity.RefreshToken
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:  map[string]*entity.UserCredential{},
		tokens: map[string]*entity.RefreshToken{},
	}
}

func (s *stubRepo) Create(_ context.Context, u *entity.UserCredential) error {
	for _, e := range s.users {
		if e.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return nil
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*entity.UserCredential, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *stubRepo) FindByID(_ context.Context, id string) (*entity.UserCredential, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (s *stubRepo) CreateRefreshToken(_ context.Context, t *entity.RefreshToken) error {
	t.ID = uuid.NewString()
	s.tokens[t.TokenID] = t
	return nil
}

func (s *stubRepo) FindRefreshTokenByTokenID(_ context.Context, tokenID string) (*entity.RefreshToken, error) {
	if t, ok := s.tokens[tokenID]; ok {
		return t, nil
	}
	return nil, repo.ErrNotFound
}

func (s *stubRepo) DeleteRefreshToken(_ context.Context, id string) error {
	for k, t := range s.tokens {
		if t.ID == id {
			delete(s.tokens, k)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *stubRepo) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	for k, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, k)
		}
	}
	return nil
}

func (s *stubRepo) WithinTx(_ context.Context, fn func(repo.CredentialRepository) error) error {
	return fn(s)
}

var _ repo.CredentialRepository = (*stubRepo)(nil)

func newTestRouter() (*gin.Engine, *stubRepo) {
	gin.SetMode(gin.TestMode)
	validation.Init()

	store := newStubRepo()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	service := application.NewService(store, helpers.NewPasswordHasher(bcrypt.MinCost), jwt, nil, nil, 720*time.Hour)
	handler := NewAuthHandler(service, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.POST("/auth/refresh", handler.Refresh)
	api.POST("/auth/revoke", handler.Revoke)
	return r, store
}

func doJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type authEnvelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID          string `json:"id"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"data"`
}

func TestAuthHandler_RegisterThenConflict(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, "/api/auth/register", gin.H{
		"email": "a@x.com", "password": "password1", "displayName": "Ann",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var env authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEmpty(t, env.Data.RefreshToken)
	assert.Equal(t, "a@x.com", env.Data.User.Email)
	assert.Equal(t, "Ann", env.Data.User.DisplayName)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// Same email immediately again: conflict.
	w = doJSON(r, "/api/auth/register", gin.H{
		"email": "a@x.com", "password": "password1", "displayName": "Ann",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	r, _ := newTestRouter()

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"bad email", gin.H{"email": "not-an-email", "password": "password1", "displayName": "Ann"}},
		{"short password", gin.H{"email": "a@x.com", "password": "short", "displayName": "Ann"}},
		{"short display name", gin.H{"email": "a@x.com", "password": "password1", "displayName": "An"}},
		{"long display name", gin.H{"email": "a@x.com", "password": "password1", "displayName": "0123456789012345678901234567890"}},
		{"missing fields", gin.H{"email": "a@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, "/api/auth/register", tt.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, "/api/auth/register", gin.H{
		"email": "a@x.com", "password": "password1", "displayName": "Ann",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, "/api/auth/login", gin.H{"email": "a@x.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")

	w = doJSON(r, "/api/auth/login", gin.H{"email": "a@x.com", "password": "password1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_RefreshRotationAndReplay(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, "/api/auth/register", gin.H{
		"email": "a@x.com", "password": "password1", "displayName": "Ann",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var env authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	original := env.Data.RefreshToken

	w = doJSON(r, "/api/auth/refresh", gin.H{"refreshToken": original})
	require.Equal(t, http.StatusOK, w.Code)

	// Replaying the pre-rotation token is rejected.
	w = doJSON(r, "/api/auth/refresh", gin.H{"refreshToken": original})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid refresh token")
}

func TestAuthHandler_Revoke(t *testing.T) {
	r, store := newTestRouter()

	w := doJSON(r, "/api/auth/register", gin.H{
		"email": "a@x.com", "password": "password1", "displayName": "Ann",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var env authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	w = doJSON(r, "/api/auth/revoke", gin.H{"userId": env.Data.User.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.tokens)

	// Idempotent: no tokens left and still 204.
	w = doJSON(r, "/api/auth/revoke", gin.H{"userId": env.Data.User.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Malformed userId never reaches the service.
	w = doJSON(r, "/api/auth/revoke", gin.H{"userId": "not-a-uuid"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
