package app

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/margintrend/config"
	"github.com/guttosm/margintrend/internal/api"
	"github.com/guttosm/margintrend/internal/pipeline"
	"github.com/guttosm/margintrend/internal/service"
)

// InitializeApp wires services, handlers and the Gin router around a
// processed pipeline result.
//
// Responsibilities:
//   - Builds the trend service over result (no further fetches happen).
//   - Builds the run service over st.Runs.
//   - Configures the router with the v1 routes and middlewares.
//   - Registers health and readiness probes (readiness pings Postgres when enabled).
//
// Returns the router and a cleanup function that releases st.
func InitializeApp(cfg config.Config, result *pipeline.Result, st *Storage) (*gin.Engine, func(), error) {
	if result == nil {
		return nil, nil, errors.New("initialize app: nil pipeline result")
	}
	if st == nil {
		return nil, nil, errors.New("initialize app: nil storage")
	}

	trends := service.NewTrendService(result)
	runs := service.NewRunService(st.Runs)

	handler := api.NewHandler(trends, runs)

	router := api.NewRouter(handler, api.RouterConfig{
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     time.Minute,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	api.NewHealthHandler(st.Ping).Register(router)

	cleanup := func() {
		if st.Close != nil {
			st.Close()
		}
	}

	return router, cleanup, nil
}
