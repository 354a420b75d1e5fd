package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/config"
	"pkgindex-web/internal/handlers"
	"pkgindex-web/internal/logging"
	"pkgindex-web/internal/middleware"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	AuthService *middleware.AuthService
	Router      *gin.Engine
}

// NewContainer wires the logger, token service and router from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return NewContainerWithLogger(cfg, logging.New(cfg.Log.Level, cfg.Environment))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	gin.SetMode(ginMode(cfg.Environment))

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: cfg.Auth.TokenTTL,
	})

	router, err := handlers.NewRouter(&handlers.RouterConfig{
		Config:      cfg,
		Logger:      logger,
		AuthService: authService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		AuthService: authService,
		Router:      router,
	}, nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	c.Logger.WithField("environment", c.Config.Environment).Debug("Container closed")
	return nil
}

func ginMode(environment string) string {
	switch environment {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
