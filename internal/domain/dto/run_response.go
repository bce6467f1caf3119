package dto

import (
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
)

// RunResponse represents the JSON structure returned by the
// GET /api/v1/runs/latest endpoint.
type RunResponse struct {
	ID             string    `json:"id" example:"0b6f6c1e-6d0e-4bd4-9a55-1e7a5b8c2f11"`
	Status         string    `json:"status" example:"succeeded"`
	Stage          string    `json:"stage,omitempty" example:"fetch"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	RecordsFetched int       `json:"records_fetched" example:"10000"`
	RowsKept       int       `json:"rows_kept" example:"812"`
	SeriesPoints   int       `json:"series_points" example:"40"`
	WindowSize     int       `json:"window_size" example:"3"`
	Indicator      string    `json:"indicator" example:"EBITDA Margin"`
	Denylist       []string  `json:"denylist"`
}

// NewRunResponse maps a stored run into its API shape.
func NewRunResponse(r models.PipelineRun) RunResponse {
	return RunResponse{
		ID:             r.ID,
		Status:         string(r.Status),
		Stage:          r.Stage,
		Error:          r.Error,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		RecordsFetched: r.RecordsFetched,
		RowsKept:       r.RowsKept,
		SeriesPoints:   r.SeriesPoints,
		WindowSize:     r.WindowSize,
		Indicator:      r.Indicator,
		Denylist:       r.Denylist,
	}
}
