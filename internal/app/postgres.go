package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guttosm/margintrend/config"
	"github.com/guttosm/margintrend/internal/logger"
	"github.com/guttosm/margintrend/internal/storage"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens a connection pool from cfg.Postgres and pings it once.
// The returned *sql.DB is safe for concurrent use.
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	db, err := sqlOpener("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// postgresOpener is an indirection used by InitStorage; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres

// Storage bundles the run audit repository with its lifecycle hooks.
type Storage struct {
	Runs  storage.RunsRepository
	Ping  func(ctx context.Context) error // nil when Postgres is disabled
	Close func()
}

// InitStorage connects to Postgres when POSTGRES_ENABLED is set and falls
// back to a repository that records nothing otherwise.
func InitStorage(cfg config.Config) (*Storage, error) {
	if !cfg.Postgres.Enabled {
		logger.L().Info().Msg("postgres disabled, pipeline runs will not be recorded")
		return &Storage{Runs: storage.NopRunsRepository{}, Close: func() {}}, nil
	}

	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	logger.L().Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("postgres connected")

	return &Storage{
		Runs:  storage.NewRunsRepository(db),
		Ping:  db.PingContext,
		Close: func() { _ = db.Close() },
	}, nil
}
