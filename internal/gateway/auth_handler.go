package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/chatapp-auth/pkg/apperrors"
	"github.com/oksasatya/chatapp-auth/pkg/response"
	"github.com/oksasatya/chatapp-auth/pkg/validation"
)

// AuthHandler is the gateway-side surface for the auth routes. It binds and
// validates the external payload, forwards it upstream, and relays the
// upstream body unchanged on success.
type AuthHandler struct {
	Client *ProxyClient
	Logger *logrus.Logger
}

func NewAuthHandler(client *ProxyClient, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Client: client, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	DisplayName string `json:"displayName" binding:"required,displayname"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type revokeRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}
	h.relay(c)(h.Client.Register(c.Request.Context(), RegisterPayload(req)))
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	h.relay(c)(h.Client.Login(c.Request.Context(), LoginPayload(req)))
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !h.bind(c, &req) {
		return
	}
	h.relay(c)(h.Client.Refresh(c.Request.Context(), RefreshPayload(req)))
}

// Revoke POST /auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if !h.bind(c, &req) {
		return
	}
	h.relay(c)(h.Client.Revoke(c.Request.Context(), RevokePayload(req)))
}

func (h *AuthHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return false
	}
	return true
}

// relay writes the upstream response through unchanged, or maps a proxy
// error to its sanitized status and message.
func (h *AuthHandler) relay(c *gin.Context) func(raw json.RawMessage, status int, err error) {
	return func(raw json.RawMessage, status int, err error) {
		if err != nil {
			if h.Logger != nil {
				h.Logger.WithError(err).
					WithField("request_id", c.GetString("request_id")).
					WithField("path", c.Request.URL.Path).
					Error("auth proxy call failed")
			}
			resp := response.Error[any](c, apperrors.StatusOf(err), apperrors.MessageOf(err), nil)
			c.JSON(resp.Status, resp)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.Data(status, "application/json", raw)
	}
}
