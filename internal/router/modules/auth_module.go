package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/chatapp-auth/internal/interface/http"
)

// AuthModule exposes the credential lifecycle routes of the auth service.
// The internal-auth gate runs engine-wide; these routes are never reachable
// without the shared secret.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/refresh", m.Handler.Refresh)
	rg.POST("/auth/revoke", m.Handler.Revoke)
}
