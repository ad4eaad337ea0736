package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/chatapp-auth/pkg/apperrors"
)

// ProxyClient forwards gateway requests to the auth service with the shared
// internal secret attached. Upstream failures are translated into stable
// client-facing errors; upstream internals never leak for 5xx responses.
type ProxyClient struct {
	BaseURL     string
	Token       string
	TokenHeader string
	HTTP        *http.Client
	Logger      *logrus.Logger
}

func NewProxyClient(baseURL, token, tokenHeader string, timeout time.Duration, logger *logrus.Logger) *ProxyClient {
	if tokenHeader == "" {
		tokenHeader = "x-internal-token"
	}
	return &ProxyClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Token:       token,
		TokenHeader: tokenHeader,
		HTTP:        &http.Client{Timeout: timeout},
		Logger:      logger,
	}
}

type RegisterPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

type RevokePayload struct {
	UserID string `json:"userId"`
}

func (p *ProxyClient) Register(ctx context.Context, payload RegisterPayload) (json.RawMessage, int, error) {
	return p.forward(ctx, "/api/auth/register", payload)
}

func (p *ProxyClient) Login(ctx context.Context, payload LoginPayload) (json.RawMessage, int, error) {
	return p.forward(ctx, "/api/auth/login", payload)
}

func (p *ProxyClient) Refresh(ctx context.Context, payload RefreshPayload) (json.RawMessage, int, error) {
	return p.forward(ctx, "/api/auth/refresh", payload)
}

func (p *ProxyClient) Revoke(ctx context.Context, payload RevokePayload) (json.RawMessage, int, error) {
	return p.forward(ctx, "/api/auth/revoke", payload)
}

// forward POSTs payload to the upstream path. On 2xx the upstream body is
// returned unchanged together with its status. Anything else becomes an
// *apperrors.Error carrying the status the boundary layer should emit.
func (p *ProxyClient) forward(ctx context.Context, path string, payload any) (json.RawMessage, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(p.TokenHeader, p.Token)

	res, err := p.HTTP.Do(req)
	if err != nil {
		// No response at all: network error or timeout. The in-flight
		// upstream operation is abandoned; no retry here.
		if p.Logger != nil {
			p.Logger.WithError(err).WithField("path", path).Error("auth service unreachable")
		}
		return nil, 0, apperrors.UpstreamUnavailable(err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, apperrors.UpstreamUnavailable(err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return raw, res.StatusCode, nil
	}
	return nil, 0, apperrors.New(res.StatusCode, resolveMessage(res.StatusCode, raw))
}

// resolveMessage picks the client-facing message for a non-2xx upstream
// response. Server errors always map to the generic unavailability message,
// whatever the upstream body said.
func resolveMessage(status int, raw []byte) string {
	if status >= 500 {
		return apperrors.MsgUpstreamUnavailable
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && strings.TrimSpace(parsed.Message) != "" {
		return parsed.Message
	}
	return "An error occurred while processing the request"
}
