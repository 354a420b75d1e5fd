package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pkgindex-web/internal/config"
	"pkgindex-web/internal/middleware"
	"pkgindex-web/internal/templates"
)

// RouterConfig holds the dependencies needed to build the router
type RouterConfig struct {
	Config      *config.Config
	Logger      *logrus.Logger
	AuthService *middleware.AuthService
}

// NewRouter builds the gin engine with templates, middleware and routes.
func NewRouter(rc *RouterConfig) (*gin.Engine, error) {
	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(tmpl)
	if err := router.SetTrustedProxies(rc.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	SetupMiddleware(router, rc)
	SetupRoutes(router, rc)

	return router, nil
}

// SetupMiddleware configures the middleware every request passes through,
// the health probe included. The error formatter sits outside recovery so
// recovered panics reach it; the request logger sits outside the formatter so
// it sees the final status.
func SetupMiddleware(router *gin.Engine, rc *RouterConfig) {
	formatter := NewErrorFormatter(rc.Config, rc.Logger)

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(rc.Logger))
	router.Use(formatter.Middleware())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders(rc.Config.IsProduction()))

	router.NoRoute(formatter.NotFound)
	router.NoMethod(formatter.MethodNotAllowed)
}

// indexMiddleware is the chain for routes under the mount point. Anything
// that can reject a request lives here so the health probe never fails.
func indexMiddleware(rc *RouterConfig) []gin.HandlerFunc {
	cfg := rc.Config
	return []gin.HandlerFunc{
		middleware.CORS(),
		middleware.RateLimiter(rc.Logger, cfg.Limits.RequestsPerSecond, cfg.Limits.Burst),
		middleware.RequestSizeLimit(cfg.MaxBodyBytes),
		middleware.OptionalAuthentication(rc.AuthService, rc.Logger),
	}
}

// SetupRoutes configures all routes
func SetupRoutes(router *gin.Engine, rc *RouterConfig) {
	cfg := rc.Config

	indexHandler := NewIndexHandler(cfg)
	healthHandler := NewHealthHandler()
	authHandler := NewAuthHandler(cfg, rc.AuthService, rc.Logger)

	// Liveness probes hit a fixed path regardless of the mount point
	router.GET("/health", healthHandler.Health)

	root := router.Group(cfg.RootPath, indexMiddleware(rc)...)
	{
		root.GET("/", indexHandler.GetIndex)
		if cfg.RootPath != "" {
			root.GET("", indexHandler.AddSlash)
		}

		root.GET("/login", authHandler.LoginPage)
		root.POST("/login", authHandler.Login)
		root.POST("/logout", authHandler.Logout)

		api := root.Group("/api")
		{
			api.GET("/version", indexHandler.GetVersion)
			api.POST("/login", authHandler.APILogin)
			api.GET("/me", middleware.Authentication(), authHandler.GetCurrentUser)
		}

		if cfg.Swagger {
			root.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		}
	}
}
