package app

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/margintrend/config"
	"github.com/guttosm/margintrend/internal/storage"
)

var pgCfg = config.Config{Postgres: config.PostgresConfig{
	Enabled: true, User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable",
}}

func TestInitPostgres_OpenError(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("open failed")
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(pgCfg); err == nil {
		t.Fatalf("expected error from InitPostgres when open fails")
	}
}

func TestInitPostgres_PingError(t *testing.T) {
	old := sqlOpener
	var gotDSN string
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		gotDSN = dataSourceName
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()
		return db, nil
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(pgCfg); err == nil {
		t.Fatalf("expected ping error from InitPostgres")
	}
	if gotDSN != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Fatalf("dsn = %q", gotDSN)
	}
}

func TestInitPostgres_InvalidHost(t *testing.T) {
	cfg := config.Config{Postgres: config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     54329, // unlikely mapped
		User:     "x",
		Password: "y",
		DBName:   "z",
		SSLMode:  "disable",
	}}
	db, err := InitPostgres(cfg)
	if err == nil {
		_ = db.Close()
		t.Fatalf("expected error connecting to invalid DB")
	}
}

func TestInitStorage_Disabled(t *testing.T) {
	st, err := InitStorage(config.Config{})
	if err != nil {
		t.Fatalf("InitStorage: %v", err)
	}
	if _, ok := st.Runs.(storage.NopRunsRepository); !ok {
		t.Fatalf("expected NopRunsRepository, got %T", st.Runs)
	}
	if st.Ping != nil {
		t.Fatalf("ping must be nil when postgres is disabled")
	}
	st.Close()
}

func TestInitStorage_OpenerError(t *testing.T) {
	old := postgresOpener
	postgresOpener = func(config.Config) (*sql.DB, error) { return nil, errors.New("refused") }
	t.Cleanup(func() { postgresOpener = old })

	if _, err := InitStorage(pgCfg); err == nil {
		t.Fatalf("expected error")
	}
}
