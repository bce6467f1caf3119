// Package render draws the aggregated trend as a standalone HTML line chart.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/logger"
	"github.com/guttosm/margintrend/internal/pipeline"
)

const (
	dateLayout = "2006-01-02"
	// echarts reads "-" as a gap in a line series.
	missingValue = "-"
)

// ErrNothingToRender is returned for a trend without points.
var ErrNothingToRender = errors.New("trend has no points to render")

// Chart holds presentation labels.
type Chart struct {
	Title      string
	XLabel     string
	YLabel     string
	RawLabel   string
	Width      string
	Height     string
	AssetsHost string // optional override of the echarts CDN
}

// DefaultChart returns the labels used for the EBITDA margin report.
func DefaultChart() Chart {
	return Chart{
		Title:    "EBITDA Margin Over Time (Smoothed)",
		XLabel:   "Report Date",
		YLabel:   "Average EBITDA Margin (%)",
		RawLabel: "Original Data",
		Width:    "1200px",
		Height:   "600px",
	}
}

// RenderHTML writes trend as an HTML page to w. The raw means are drawn as
// one series and the smoothed values as a second one named after the window.
func (c Chart) RenderHTML(w io.Writer, trend models.Trend) error {
	if len(trend.Points) == 0 {
		return ErrNothingToRender
	}

	dates := make([]string, len(trend.Points))
	raw := make([]opts.LineData, len(trend.Points))
	smoothed := make([]opts.LineData, len(trend.Points))
	for i, p := range trend.Points {
		dates[i] = p.Date.Format(dateLayout)
		raw[i] = lineValue(p.Mean)
		smoothed[i] = lineValue(p.Smoothed)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  c.Title,
			Width:      c.Width,
			Height:     c.Height,
			AssetsHost: c.AssetsHost, // empty keeps the library default
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)

	line.SetXAxis(dates).
		AddSeries(c.RawLabel, raw, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)})).
		AddSeries(pipeline.MovingAverageLabel(trend.Window), smoothed,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// WriteFile renders trend into path, creating parent directories as needed.
func (c Chart) WriteFile(path string, trend models.Trend) (err error) {
	if len(trend.Points) == 0 {
		return ErrNothingToRender
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close chart file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := c.RenderHTML(bw, trend); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write chart file: %w", err)
	}

	logger.L().Info().Str("path", path).Int("points", len(trend.Points)).Msg("chart written")
	return nil
}

func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: missingValue}
	}
	return opts.LineData{Value: *v}
}
