package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager handles generation and validation of JWT tokens.
// Access and refresh tokens are signed with distinct secrets so that a
// compromise of one does not compromise the other.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// AccessClaims identify a user on direct API calls.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the correlation value of the stored refresh-token
// record; TokenID must match a live row before the token is honored.
type RefreshClaims struct {
	UserID  string `json:"userId"`
	TokenID string `json:"tokenId"`
	jwt.RegisteredClaims
}

func (m *JWTManager) SignAccessToken(userID, email string) (string, time.Time, error) {
	exp := time.Now().Add(m.AccessTTL)
	claims := &AccessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) SignRefreshToken(userID, tokenID string) (string, time.Time, error) {
	exp := time.Now().Add(m.RefreshTTL)
	claims := &RefreshClaims{
		UserID:  userID,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.RefreshSecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseInto(tokenStr, m.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken validates signature, method, and expiry. It checks
// nothing against the database; that is the orchestrator's second step.
func (m *JWTManager) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseInto(tokenStr, m.RefreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.TokenID == "" {
		return nil, errors.New("missing tokenId claim")
	}
	return claims, nil
}

func parseInto(tokenStr string, secret []byte, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return errors.New("invalid token")
	}
	return nil
}
