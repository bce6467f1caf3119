//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/margintrend/config"
	"github.com/guttosm/margintrend/internal/app"
	"github.com/guttosm/margintrend/internal/domain/dto"
	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/pipeline"
	"github.com/guttosm/margintrend/internal/service"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "margintrend",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=margintrend sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", h, mp.Port(), "margintrend")
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func migrate(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func e2eDataset() *models.RawDataset {
	names := []string{"reportid", "reportdate", "reporttype", "longname", "country", "region", "indicator", "statement", "amount"}
	cols := make([]models.Column, len(names))
	for i, n := range names {
		cols[i] = models.Column{Name: n}
	}
	row := func(date, company string, amount float64) models.RawRecord {
		return models.RawRecord{"R", date, "10-K", company, "USA", "NA", "EBITDA Margin", "IS", json.Number(fmt.Sprint(amount))}
	}
	return &models.RawDataset{
		Columns: cols,
		Data: []models.RawRecord{
			row("2021-01-31", "Acme", 10),
			row("2021-02-28", "Acme", 20),
			row("2021-03-31", "Acme", 30),
			row("2021-03-31", "Immutep Ltd", -900),
		},
	}
}

func TestAPI_E2E_TrendAndRecordedRun(t *testing.T) {
	dsn, host, port, term := startPG(t)
	defer term()
	migrate(t, dsn)

	cfg := config.Config{
		Server: config.ServerConfig{Port: "0", RateLimit: 1000, RequestTimeout: 5 * time.Second},
		Postgres: config.PostgresConfig{
			Enabled: true, Host: host, Port: port.Int(), User: "postgres",
			Password: "postgres", DBName: "margintrend", SSLMode: "disable",
		},
	}

	st, err := app.InitStorage(cfg)
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	started := time.Now()
	res, err := pipeline.Process(e2eDataset(), pipeline.DefaultCriteria(), 3)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	run := service.NewRun(started, time.Now(), res.Criteria, res.Window, res, nil)
	if err := service.NewRunService(st.Runs).Record(context.Background(), &run); err != nil {
		t.Fatalf("record: %v", err)
	}

	router, cleanup, err := app.InitializeApp(cfg, res, st)
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status: %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("latest run status: %d body=%s", w.Code, w.Body.String())
	}
	var latest dto.RunResponse
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("json: %v", err)
	}
	if latest.ID != run.ID || latest.Status != string(models.RunSucceeded) || latest.RowsKept != 3 {
		t.Fatalf("unexpected run: %+v", latest)
	}
	if len(latest.Denylist) != 1 || latest.Denylist[0] != "Immutep Ltd" {
		t.Fatalf("denylist = %v", latest.Denylist)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("trend status: %d body=%s", w.Code, w.Body.String())
	}
	var trend dto.TrendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &trend); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(trend.Points) != 3 || trend.Points[1].Smoothed == nil || *trend.Points[1].Smoothed != 20 {
		t.Fatalf("unexpected trend: %+v", trend)
	}
}
