package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/pipeline"
)

// ErrNoData is returned when no row survived filtering.
var ErrNoData = errors.New("no data after filtering")

// TrendService serves the smoothed trend computed from one pipeline run.
type TrendService interface {
	GetTrend(ctx context.Context, window int) (*models.Trend, error)
	DefaultWindow() int
}

type trendService struct {
	result *pipeline.Result
}

// NewTrendService wraps an already processed result. The result is treated
// as read-only, so the service is safe for concurrent use.
func NewTrendService(result *pipeline.Result) TrendService {
	return &trendService{result: result}
}

func (s *trendService) DefaultWindow() int {
	if s.result == nil || s.result.Window <= 0 {
		return pipeline.DefaultWindow
	}
	return s.result.Window
}

// GetTrend returns the per-date means smoothed with window. The run's own
// window is served as computed; any other window re-smooths the same series
// without fetching again.
func (s *trendService) GetTrend(ctx context.Context, window int) (*models.Trend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", pipeline.ErrInvalidWindow, window)
	}
	if s.result.Empty() {
		return nil, ErrNoData
	}

	if window == s.result.Window {
		trend := s.result.Trend()
		return &trend, nil
	}

	smoothed, err := pipeline.Smooth(s.result.Series, window)
	if err != nil {
		return nil, err
	}
	trend := models.NewTrend(s.result.Criteria.Indicator, window, s.result.Series, smoothed)
	return &trend, nil
}
