package models

import "time"

// Point is one entry of a TimeSeries. Valid is false when no value could be
// computed for Date (a boundary of a moving average, or a date whose rows
// carry no numeric amount).
type Point struct {
	Date  time.Time
	Value float64
	Valid bool
}

// TimeSeries is a date-keyed series sorted chronologically ascending.
// Dates are unique.
type TimeSeries []Point

// Dates returns the series keys in order.
func (s TimeSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// TrendPoint aligns the raw per-date mean with its smoothed value.
type TrendPoint struct {
	Date     time.Time
	Mean     *float64
	Smoothed *float64
}

// Trend is the data handed to the rendering collaborator: two aligned series
// plus the labels needed to present them.
type Trend struct {
	Indicator string
	Window    int
	Points    []TrendPoint
}

// NewTrend zips a raw series with its smoothed counterpart. Both series must
// share the same dates in the same order.
func NewTrend(indicator string, window int, raw, smoothed TimeSeries) Trend {
	points := make([]TrendPoint, len(raw))
	for i, p := range raw {
		tp := TrendPoint{Date: p.Date}
		if p.Valid {
			v := p.Value
			tp.Mean = &v
		}
		if i < len(smoothed) && smoothed[i].Valid {
			v := smoothed[i].Value
			tp.Smoothed = &v
		}
		points[i] = tp
	}
	return Trend{Indicator: indicator, Window: window, Points: points}
}
