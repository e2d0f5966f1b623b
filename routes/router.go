package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"

	handlers "barterhub/internal/handlers/shared"
	"barterhub/internal/middleware"
	"barterhub/pkg/logger"
)

type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	RateLimitPerMinute int
	RateLimiter        middleware.WindowCounter
	Logger             *logger.Logger
}

type Handlers struct {
	Barter       *handlers.BarterHandler
	Review       *handlers.ReviewHandler
	Skill        *handlers.SkillHandler
	Notification *handlers.NotificationHandler
	Health       *handlers.HealthHandler
}

// NewRouter builds the engine with global middleware and every API group.
func NewRouter(cfg RouterConfig, h Handlers) (*gin.Engine, error) {
	router := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(cfg.Logger))
	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	router.GET("/health", h.Health.Health)

	rateLimit := func() gin.HandlerFunc {
		if cfg.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimitMiddleware(cfg.RateLimiter, cfg.RateLimitPerMinute, cfg.Logger)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Health)

		public := v1.Group("")
		public.Use(middleware.OptionalAuth(cfg.JWTSecret), rateLimit())

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(cfg.JWTSecret), rateLimit())

		SetupBarterRoutes(protected, h.Barter)
		SetupReviewRoutes(public, protected, h.Review)
		SetupSkillRoutes(public, protected, h.Skill)
		SetupNotificationRoutes(protected, h.Notification)
	}

	return router, nil
}
