// Package routes khai báo router HTTP của service.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/oneu-vn/voucher-search/internal/api/handlers"
	"github.com/oneu-vn/voucher-search/internal/config"
	"github.com/oneu-vn/voucher-search/internal/middleware"
	"github.com/oneu-vn/voucher-search/internal/search"
	"github.com/oneu-vn/voucher-search/internal/search/adapter"
)

// SetupRouter dựng router với đầy đủ middleware, health check và API v1
func SetupRouter(
	cfg *config.Config,
	engine *search.Engine,
	elastic *adapter.ElasticAdapter,
	gemini *adapter.GeminiAdapter,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(corsMiddleware())
	if cfg.TracingEnabled {
		r.Use(middleware.RequestTiming())
	}

	searchHandler := handlers.NewSearchHandler(engine, logger)
	voucherHandler := handlers.NewVoucherHandler(engine, logger)
	healthHandler := handlers.NewHealthHandler(elastic, gemini)

	r.GET("/liveness", healthHandler.Liveness)
	r.GET("/readiness", healthHandler.Readiness)
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/search", searchHandler.Search)
		api.GET("/vouchers/:id", voucherHandler.GetByID)
		api.DELETE("/vouchers/:id", voucherHandler.Delete)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
