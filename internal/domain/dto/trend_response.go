package dto

import "github.com/guttosm/margintrend/internal/domain/models"

const dateLayout = "2006-01-02"

// TrendResponse represents the JSON structure returned by the
// GET /api/v1/trend endpoint.
type TrendResponse struct {
	Indicator   string       `json:"indicator" example:"EBITDA Margin"`
	Window      int          `json:"window" example:"3"`
	SeriesLabel string       `json:"series_label" example:"3-Period Moving Average"`
	Points      []TrendPoint `json:"points"`
}

// TrendPoint is one date of the trend. Nulls mark values that could not be computed.
type TrendPoint struct {
	Date     string   `json:"date" example:"2020-01-15"`
	Mean     *float64 `json:"mean" example:"12.5"`
	Smoothed *float64 `json:"smoothed" example:"11.9"`
}

// NewTrendResponse maps the domain trend into its API shape.
func NewTrendResponse(t models.Trend, seriesLabel string) TrendResponse {
	points := make([]TrendPoint, len(t.Points))
	for i, p := range t.Points {
		points[i] = TrendPoint{
			Date:     p.Date.Format(dateLayout),
			Mean:     p.Mean,
			Smoothed: p.Smoothed,
		}
	}
	return TrendResponse{
		Indicator:   t.Indicator,
		Window:      t.Window,
		SeriesLabel: seriesLabel,
		Points:      points,
	}
}
