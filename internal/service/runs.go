package service

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/logger"
	"github.com/guttosm/margintrend/internal/pipeline"
	"github.com/guttosm/margintrend/internal/storage"
)

// ErrRunNotFound is returned when no run has been recorded.
var ErrRunNotFound = errors.New("no pipeline run recorded")

// RunService records and reports pipeline runs.
type RunService interface {
	Record(ctx context.Context, run *models.PipelineRun) error
	LatestRun(ctx context.Context) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)
}

type runService struct {
	repo storage.RunsRepository
}

func NewRunService(repo storage.RunsRepository) RunService {
	return &runService{repo: repo}
}

func (s *runService) Record(ctx context.Context, run *models.PipelineRun) error {
	if err := s.repo.RecordRun(ctx, run); err != nil {
		return err
	}
	logger.L().Info().Str("run_id", run.ID).Str("status", string(run.Status)).Msg("pipeline run recorded")
	return nil
}

func (s *runService) LatestRun(ctx context.Context) (*models.PipelineRun, error) {
	run, err := s.repo.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (s *runService) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []models.PipelineRun{}
	}
	return runs, nil
}

// NewRun builds the audit record for one pipeline execution. res may be nil
// when runErr is set.
func NewRun(started, finished time.Time, criteria pipeline.Criteria, window int, res *pipeline.Result, runErr error) models.PipelineRun {
	run := models.PipelineRun{
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		WindowSize: window,
		Indicator:  criteria.Indicator,
		Denylist:   append([]string{}, criteria.Denylist...),
	}

	if res != nil {
		run.RecordsFetched = res.RecordsFetched
		run.RowsNormalized = len(res.Normalized)
		run.RowsKept = len(res.Filtered)
		run.SeriesPoints = len(res.Series)
	}

	switch {
	case runErr != nil:
		run.Status = models.RunFailed
		run.Stage = pipeline.FailedStage(runErr)
		run.Error = runErr.Error()
	case res.Empty():
		run.Status = models.RunEmpty
	default:
		run.Status = models.RunSucceeded
	}
	return run
}
