package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/guttosm/margintrend/internal/domain/models"
)

// RunsRepository defines the contract for the pipeline run audit log.
// It stores run metadata only; fetched rows are never persisted.
type RunsRepository interface {
	RecordRun(ctx context.Context, run *models.PipelineRun) error
	LatestRun(ctx context.Context) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)
}

const runColumns = `id, started_at, finished_at, status, stage, error,
	records_fetched, rows_normalized, rows_kept, series_points,
	window_size, indicator, denylist`

type runsRepository struct {
	db *sql.DB
}

func NewRunsRepository(db *sql.DB) RunsRepository {
	return &runsRepository{db: db}
}

// RecordRun inserts run. A missing ID is filled with a new UUID and written
// back to run.
func (r *runsRepository) RecordRun(ctx context.Context, run *models.PipelineRun) error {
	if run == nil {
		return errors.New("record run: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		string(run.Status),
		run.Stage,
		run.Error,
		run.RecordsFetched,
		run.RowsNormalized,
		run.RowsKept,
		run.SeriesPoints,
		run.WindowSize,
		run.Indicator,
		pq.Array(run.Denylist),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run, or nil when none exists.
func (r *runsRepository) LatestRun(ctx context.Context) (*models.PipelineRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *runsRepository) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("list runs: limit must be positive, got %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.PipelineRun, error) {
	var (
		run      models.PipelineRun
		status   string
		denylist []string
		finished sql.NullTime
	)
	if err := s.Scan(
		&run.ID,
		&run.StartedAt,
		&finished,
		&status,
		&run.Stage,
		&run.Error,
		&run.RecordsFetched,
		&run.RowsNormalized,
		&run.RowsKept,
		&run.SeriesPoints,
		&run.WindowSize,
		&run.Indicator,
		pq.Array(&denylist),
	); err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	run.Denylist = denylist
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return &run, nil
}

// NopRunsRepository is used when Postgres is disabled. It records nothing
// and never has a run to report.
type NopRunsRepository struct{}

func (NopRunsRepository) RecordRun(_ context.Context, run *models.PipelineRun) error {
	if run != nil && run.ID == "" {
		run.ID = uuid.NewString()
	}
	return nil
}

func (NopRunsRepository) LatestRun(context.Context) (*models.PipelineRun, error) { return nil, nil }

func (NopRunsRepository) ListRuns(context.Context, int) ([]models.PipelineRun, error) {
	return nil, nil
}
