package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/chatapp-auth/internal/gateway"
	"github.com/oksasatya/chatapp-auth/internal/interface/middleware"
)

// GatewayModule exposes the public auth routes on the gateway, each behind
// an IP-scoped rate limit.
type GatewayModule struct {
	Handler *gateway.AuthHandler
	RDB     *redis.Client
}

func NewGatewayModule(h *gateway.AuthHandler, rdb *redis.Client) *GatewayModule {
	return &GatewayModule{Handler: h, RDB: rdb}
}

func (m *GatewayModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath())
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/revoke", loginLimiter, m.Handler.Revoke)
}
