package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/logger"
)

// Fetcher retrieves the raw dataset. *fetcher.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.RawDataset, error)
}

// Result carries every intermediate product of one run so callers can render,
// serve or audit it without re-fetching.
type Result struct {
	RecordsFetched int
	Criteria       Criteria
	Window         int
	Normalized     models.Table
	Filtered       models.Table
	Series         models.TimeSeries
	Smoothed       models.TimeSeries
}

// Empty reports whether there is nothing to visualize: no row survived
// filtering, or none of the survivors carries a report date. An empty result
// is a normal outcome, not a failure.
func (r *Result) Empty() bool {
	return r == nil || len(r.Filtered) == 0 || len(r.Series) == 0
}

// Trend zips the aggregated and smoothed series for presentation.
func (r *Result) Trend() models.Trend {
	return models.NewTrend(r.Criteria.Indicator, r.Window, r.Series, r.Smoothed)
}

// Process runs extract → normalize → filter → aggregate → smooth over an
// already fetched dataset. Any stage failure is returned as *StageError and
// no partial result is produced.
func Process(raw *models.RawDataset, criteria Criteria, window int) (*Result, error) {
	if window <= 0 {
		return nil, stageFailed(StageSmooth, fmt.Errorf("%w: got %d", ErrInvalidWindow, window))
	}

	res := &Result{Criteria: criteria, Window: window}
	if raw != nil {
		res.RecordsFetched = len(raw.Data)
	}

	candidates, err := Extract(raw)
	if err != nil {
		return nil, stageFailed(StageExtract, err)
	}
	logger.L().Info().
		Int("rows", candidates.Len()).
		Int("columns", len(candidates.Columns())).
		Msg("created table")

	res.Normalized, err = Normalize(candidates)
	if err != nil {
		return nil, stageFailed(StageNormalize, err)
	}
	logger.L().Info().Int("countries", CountryCount()).Int("rows", len(res.Normalized)).Msg("normalized table, mapped country codes")

	byIndicator := KeepIndicator(res.Normalized, criteria.Indicator)
	logger.L().Info().Str("indicator", criteria.Indicator).Int("rows", len(byIndicator)).Msg("filtered by indicator")

	res.Filtered = ExcludeCompanies(byIndicator, criteria.Denylist)
	logger.L().Info().
		Strs("denylist", criteria.Denylist).
		Int("removed", len(byIndicator)-len(res.Filtered)).
		Int("rows", len(res.Filtered)).
		Msg("removed outlier companies")

	if len(res.Filtered) == 0 {
		logger.L().Warn().Str("indicator", criteria.Indicator).Msg("no rows left after filtering, nothing to visualize")
		res.Series = models.TimeSeries{}
		res.Smoothed = models.TimeSeries{}
		return res, nil
	}

	res.Series = Aggregate(res.Filtered)
	logger.L().Info().Int("points", len(res.Series)).Msg("aggregated by report date")

	if len(res.Series) == 0 {
		logger.L().Warn().Int("rows", len(res.Filtered)).Msg("no filtered row carries a report date, nothing to visualize")
		res.Smoothed = models.TimeSeries{}
		return res, nil
	}

	res.Smoothed, err = Smooth(res.Series, window)
	if err != nil {
		return nil, stageFailed(StageSmooth, err)
	}
	logger.L().Info().Int("window", window).Int("points", len(res.Smoothed)).Msg("applied moving average")

	return res, nil
}

func stageFailed(stage string, err error) error {
	logger.L().Error().Str("stage", stage).Err(err).Msg("pipeline stage failed")
	return &StageError{Stage: stage, Err: err}
}

// Runner fetches the dataset and processes it in one call.
type Runner struct {
	fetcher  Fetcher
	criteria Criteria
	window   int
}

// NewRunner builds a Runner over f.
func NewRunner(f Fetcher, criteria Criteria, window int) *Runner {
	return &Runner{fetcher: f, criteria: criteria, window: window}
}

// Run validates the window, fetches once and processes the response.
// The window is checked before the network call so a bad configuration
// never issues a request.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.window <= 0 {
		return nil, stageFailed(StageSmooth, fmt.Errorf("%w: got %d", ErrInvalidWindow, r.window))
	}

	start := time.Now()
	raw, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return nil, stageFailed(StageFetch, err)
	}
	logger.L().Info().Int("records", len(raw.Data)).Dur("elapsed", time.Since(start)).Msg("fetched records")

	res, err := Process(raw, r.criteria, r.window)
	if err != nil {
		return nil, err
	}
	logger.L().Info().Dur("elapsed", time.Since(start)).Bool("empty", res.Empty()).Msg("pipeline done")
	return res, nil
}
