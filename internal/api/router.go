package api

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/margintrend/internal/middleware"
)

// RouterConfig tunes the global middlewares. Zero values select the defaults.
type RouterConfig struct {
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

const defaultRequestTimeout = 10 * time.Second

// NewRouter creates a Gin engine with middlewares, Swagger docs and the v1
// routes. Health probes are registered by app.InitializeApp.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimit, cfg.RateWindow),
		middleware.Timeout(cfg.RequestTimeout),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/trend", handler.GetTrend)
		v1.GET("/runs", handler.ListRuns)
		v1.GET("/runs/latest", handler.GetLatestRun)
	}

	return router
}
