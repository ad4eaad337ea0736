package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/chatapp-auth/config"
	"github.com/oksasatya/chatapp-auth/internal/container"
	"github.com/oksasatya/chatapp-auth/internal/interface/middleware"
	"github.com/oksasatya/chatapp-auth/internal/router"
	"github.com/oksasatya/chatapp-auth/pkg/helpers"
	"github.com/oksasatya/chatapp-auth/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-gateway", cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	// Redis backs the public rate limits; the limiter fails open without it.
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitGatewayModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.GatewayPort, Handler: r}
	go func() {
		logger.Infof("gateway starting on :%s", cfg.GatewayPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(http.ErrServerClosed, err) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down gateway")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("gateway exited properly")
}
