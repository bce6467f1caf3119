package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/margintrend/internal/domain/dto"
	"github.com/guttosm/margintrend/internal/middleware"
	"github.com/guttosm/margintrend/internal/pipeline"
	"github.com/guttosm/margintrend/internal/service"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Handler serves the trend computed at startup and the run audit log.
type Handler struct {
	trends service.TrendService
	runs   service.RunService
}

// NewHandler constructs a Handler over the given services.
func NewHandler(trends service.TrendService, runs service.RunService) *Handler {
	return &Handler{trends: trends, runs: runs}
}

// GetTrend godoc
// @Summary      Get the smoothed EBITDA margin trend
// @Description  Returns the mean amount per report date and its centered moving average. Boundary points of the moving average are null.
// @Tags         trend
// @Produce      json
// @Param        window  query     int  false  "Moving-average window (positive integer); defaults to the configured window"  example(3)
// @Success      200     {object}  dto.TrendResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Not Found"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/trend [get]
func (h *Handler) GetTrend(c *gin.Context) {
	window := h.trends.DefaultWindow()
	if s, ok := c.GetQuery("window"); ok {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.AbortWithError(c, http.StatusBadRequest, "window must be a positive integer", err)
			return
		}
		window = n
	}

	trend, err := h.trends.GetTrend(c.Request.Context(), window)
	switch {
	case errors.Is(err, service.ErrNoData):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", err))
		return
	case errors.Is(err, pipeline.ErrInvalidWindow):
		middleware.AbortWithError(c, http.StatusBadRequest, "window must be a positive integer", err)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to compute trend", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTrendResponse(*trend, pipeline.MovingAverageLabel(trend.Window)))
}

// GetLatestRun godoc
// @Summary      Get the latest pipeline run
// @Description  Returns counts and outcome of the most recent recorded run
// @Tags         runs
// @Produce      json
// @Success      200  {object}  dto.RunResponse    "Success"
// @Failure      404  {object}  dto.ErrorResponse  "Not Found"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs/latest [get]
func (h *Handler) GetLatestRun(c *gin.Context) {
	run, err := h.runs.LatestRun(c.Request.Context())
	if errors.Is(err, service.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no run recorded", nil))
		return
	}
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch latest run", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRunResponse(*run))
}

// ListRuns godoc
// @Summary      List pipeline runs
// @Description  Returns recorded runs, newest first
// @Tags         runs
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of runs (1-100)"  example(20)
// @Success      200    {array}   dto.RunResponse    "Success"
// @Failure      400    {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500    {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if s, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRunsLimit {
			middleware.AbortWithError(c, http.StatusBadRequest, "limit must be an integer between 1 and 100", err)
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to list runs", err)
		return
	}

	out := make([]dto.RunResponse, len(runs))
	for i, r := range runs {
		out[i] = dto.NewRunResponse(r)
	}
	c.JSON(http.StatusOK, out)
}
