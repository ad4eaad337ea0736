package router

import (
	"github.com/oksasatya/chatapp-auth/internal/application"
	"github.com/oksasatya/chatapp-auth/internal/container"
	"github.com/oksasatya/chatapp-auth/internal/gateway"
	pginfra "github.com/oksasatya/chatapp-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/chatapp-auth/internal/interface/http"
	"github.com/oksasatya/chatapp-auth/internal/router/modules"
	"github.com/oksasatya/chatapp-auth/pkg/helpers"
)

// InitAuthModules wires the auth service modules from container singletons.
// Called once during startup of cmd/authservice.
func InitAuthModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewCredentialRepository(container.GetPGPool())
	service := application.NewService(
		repo,
		helpers.NewPasswordHasher(cfg.BcryptCost),
		container.GetJWT(),
		container.GetRabbitPub(),
		container.GetLogger(),
		cfg.RefreshTTL,
	)
	handler := handlers.NewAuthHandler(service, container.GetLogger())

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(handler))
}

// InitGatewayModules wires the gateway modules from container singletons.
// Called once during startup of cmd/gateway.
func InitGatewayModules(r *Registry) {
	cfg := container.GetConfig()

	client := gateway.NewProxyClient(
		cfg.AuthServiceURL,
		cfg.InternalToken,
		cfg.InternalTokenHeader,
		cfg.ProxyTimeout,
		container.GetLogger(),
	)
	handler := gateway.NewAuthHandler(client, container.GetLogger())

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewGatewayModule(handler, container.GetRedis()))
}
