package http

import (
	"github.com/gadai/backend/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		mata := v1.Group("/mata")
		{
			mata.POST("/match", handler.MatchMata)
			mata.POST("/classify", handler.ClassifyItems)
			mata.GET("/rules", handler.ListRules)
			mata.DELETE("/rules/cache", handler.InvalidateRulesCache)
			mata.GET("/audits", handler.ListAudits)
		}
	}

	return router
}
