package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
)

const DefaultWindow = 3

// Aggregate groups t by report date and returns the mean amount per date,
// oldest first.
//
// Rows with a missing date are left out; they never form a group. Rows whose
// amount is not numeric do not contribute to the mean; a date with no numeric
// amount at all yields an invalid point.
func Aggregate(t models.Table) models.TimeSeries {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[time.Time]*acc)
	for _, row := range t {
		if !row.HasDate() {
			continue
		}
		g, ok := groups[row.ReportDate.Time]
		if !ok {
			g = &acc{}
			groups[row.ReportDate.Time] = g
		}
		if row.Amount.Valid {
			g.sum += row.Amount.Float64
			g.count++
		}
	}

	series := make(models.TimeSeries, 0, len(groups))
	for date, g := range groups {
		p := models.Point{Date: date}
		if g.count > 0 {
			p.Value = g.sum / float64(g.count)
			p.Valid = true
		}
		series = append(series, p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

// Smooth applies a centered moving average of the given window to s.
//
// The window at position i spans i-window/2 through i+(window-1)/2, so even
// windows lean towards older values. Positions whose window runs past either
// end of the series, or covers an invalid point, are invalid: partial windows
// are never averaged. The output has the same dates as s.
func Smooth(s models.TimeSeries, window int) (models.TimeSeries, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	before := window / 2
	after := (window - 1) / 2

	out := make(models.TimeSeries, len(s))
	for i, p := range s {
		out[i] = models.Point{Date: p.Date}
		lo, hi := i-before, i+after
		if lo < 0 || hi >= len(s) {
			continue
		}
		sum := 0.0
		complete := true
		for j := lo; j <= hi; j++ {
			if !s[j].Valid {
				complete = false
				break
			}
			sum += s[j].Value
		}
		if complete {
			out[i].Value = sum / float64(window)
			out[i].Valid = true
		}
	}
	return out, nil
}

// MovingAverageLabel names the smoothed series for presentation.
func MovingAverageLabel(window int) string {
	return fmt.Sprintf("%d-Period Moving Average", window)
}
