package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/chatapp-auth/internal/application"
	"github.com/oksasatya/chatapp-auth/pkg/apperrors"
	"github.com/oksasatya/chatapp-auth/pkg/response"
	"github.com/oksasatya/chatapp-auth/pkg/validation"
)

type AuthHandler struct {
	Service *application.Service
	Logger  *logrus.Logger
}

func NewAuthHandler(service *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Logger: logger}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	DisplayName string `json:"displayName" binding:"required,displayname"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RevokeRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	result, err := h.Service.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.fail(c, err, "register failed", logrus.Fields{"email": req.Email})
		return
	}
	resp := response.Success(c, http.StatusCreated, result, "registered")
	c.JSON(resp.Status, resp)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "login failed", logrus.Fields{"email": req.Email})
		return
	}
	resp := response.Success(c, http.StatusOK, result, "logged in")
	c.JSON(resp.Status, resp)
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	pair, err := h.Service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err, "refresh failed", nil)
		return
	}
	resp := response.Success(c, http.StatusOK, pair, "refreshed")
	c.JSON(resp.Status, resp)
}

// Revoke POST /auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	if err := h.Service.Revoke(c.Request.Context(), req.UserID); err != nil {
		h.fail(c, err, "revoke failed", logrus.Fields{"user_id": req.UserID})
		return
	}
	c.Status(http.StatusNoContent)
}

// fail logs the full error at the boundary and sends the sanitized subset
// to the client.
func (h *AuthHandler) fail(c *gin.Context, err error, msg string, fields logrus.Fields) {
	if h.Logger != nil {
		entry := h.Logger.WithError(err).WithField("request_id", c.GetString("request_id"))
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		entry.Error(msg)
	}
	resp := response.Error[any](c, apperrors.StatusOf(err), apperrors.MessageOf(err), nil)
	c.JSON(resp.Status, resp)
}
