package main

//
//  @title           margintrend API
//  @version         1.0
//  @description     EBITDA margin trend pipeline over the Nasdaq Data Link MER/F1 datatable.
//  @termsOfService  https://github.com/guttosm/margintrend
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/margintrend
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        trend
//  @tag.description Smoothed indicator trend computed at startup
//
//  @tag.name        runs
//  @tag.description Pipeline run audit log
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/margintrend/config"
	_ "github.com/guttosm/margintrend/docs" // swagger docs
	"github.com/guttosm/margintrend/internal/app"
	"github.com/guttosm/margintrend/internal/auth"
	"github.com/guttosm/margintrend/internal/fetcher"
	"github.com/guttosm/margintrend/internal/logger"
	"github.com/guttosm/margintrend/internal/pipeline"
	"github.com/guttosm/margintrend/internal/render"
	"github.com/guttosm/margintrend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// options holds the command line flags. Zero values keep the configured value.
type options struct {
	mode     string
	window   int
	perPage  int
	out      string
	port     string
	skipAuth bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("margintrend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.mode, "mode", "run", "Mode: run (render chart) or api (serve trend over HTTP)")
	fs.IntVar(&o.window, "window", 0, "Moving-average window (overrides WINDOW_SIZE)")
	fs.IntVar(&o.perPage, "per-page", 0, "Rows requested from the datatable (overrides RECORDS_PER_PAGE)")
	fs.StringVar(&o.out, "out", "", "Chart output path (overrides CHART_OUTPUT)")
	fs.StringVar(&o.port, "port", "", "Port for API mode (overrides SERVER_PORT)")
	fs.BoolVar(&o.skipAuth, "skip-auth", false, "Skip the interactive login (non-interactive environments)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.mode != "run" && o.mode != "api" {
		return o, fmt.Errorf("unknown mode %q", o.mode)
	}
	return o, nil
}

// applyFlags overrides cfg with the flags that were set and re-validates it.
func applyFlags(cfg config.Config, o options) (config.Config, error) {
	if o.window != 0 {
		cfg.Pipeline.WindowSize = o.window
	}
	if o.perPage != 0 {
		cfg.Nasdaq.RecordsPerPage = o.perPage
	}
	if o.out != "" {
		cfg.Chart.Output = o.out
	}
	if o.port != "" {
		cfg.Server.Port = o.port
	}
	return cfg, cfg.Validate()
}

// newFetcher and newAuthenticator are indirections for tests.
var newFetcher = func(cfg config.Config) pipeline.Fetcher {
	return fetcher.New(fetcher.Config{
		BaseURL: cfg.Nasdaq.BaseURL,
		APIKey:  cfg.Nasdaq.APIKey,
		PerPage: cfg.Nasdaq.RecordsPerPage,
		Timeout: cfg.Nasdaq.Timeout,
	}, nil)
}

var newAuthenticator = func(cfg config.Config, skip bool) auth.Authenticator {
	if skip {
		logger.L().Warn().Msg("login gate skipped")
		return auth.AllowAll
	}
	return auth.NewPromptAuthenticator(cfg.Auth)
}

func criteriaFrom(cfg config.Config) pipeline.Criteria {
	return pipeline.Criteria{Indicator: cfg.Pipeline.Indicator, Denylist: cfg.Pipeline.Denylist}
}

// executePipeline fetches and processes the dataset once and records the
// outcome, failed runs included. A recording failure is logged, never fatal.
func executePipeline(ctx context.Context, cfg config.Config, f pipeline.Fetcher, runs service.RunService) (*pipeline.Result, error) {
	criteria := criteriaFrom(cfg)
	window := cfg.Pipeline.WindowSize

	started := time.Now()
	res, err := pipeline.NewRunner(f, criteria, window).Run(ctx)

	run := service.NewRun(started, time.Now(), criteria, window, res, err)
	if rerr := runs.Record(ctx, &run); rerr != nil {
		logger.L().Error().Err(rerr).Msg("failed to record pipeline run")
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

// renderResult writes the chart for res, or reports that there is nothing to
// visualize. It returns whether a chart was written.
func renderResult(cfg config.Config, res *pipeline.Result) (bool, error) {
	if res.Empty() {
		logger.L().Warn().Str("indicator", res.Criteria.Indicator).Msg("nothing to visualize, chart not rendered")
		return false, nil
	}
	if err := render.DefaultChart().WriteFile(cfg.Chart.Output, res.Trend()); err != nil {
		return false, err
	}
	return true, nil
}

func newServer(router http.Handler, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs server on ln until ctx is canceled, then shuts it down
// gracefully and calls cleanup.
func serve(ctx context.Context, server *http.Server, ln net.Listener, cleanup func()) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info().Str("addr", ln.Addr().String()).Msg("server starting")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	cleanup()
	logger.L().Info().Msg("server exited gracefully")
	return err
}

func run(ctx context.Context, args []string) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if cfg, err = applyFlags(cfg, o); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := newAuthenticator(cfg, o.skipAuth).Authenticate(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if cfg.Nasdaq.APIKey != "" {
		logger.L().Info().Msg("API key loaded successfully")
	}

	st, err := app.InitStorage(cfg)
	if err != nil {
		return err
	}
	runs := service.NewRunService(st.Runs)

	res, err := executePipeline(ctx, cfg, newFetcher(cfg), runs)
	if err != nil {
		st.Close()
		return err
	}

	switch o.mode {
	case "api":
		router, cleanup, err := app.InitializeApp(cfg, res, st)
		if err != nil {
			st.Close()
			return fmt.Errorf("app init: %w", err)
		}
		ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
		if err != nil {
			cleanup()
			return fmt.Errorf("listen: %w", err)
		}
		return serve(ctx, newServer(router, cfg.Server.Port), ln, cleanup)

	default:
		defer st.Close()
		if _, err := renderResult(cfg, res); err != nil {
			return err
		}
		return nil
	}
}

// main is the entry point of the margintrend application.
//
// Modes (selected via --mode flag):
//   - run: login, fetch once, process, write the HTML chart and exit.
//   - api: login, fetch once, process, then serve the trend over HTTP until SIGINT/SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		stage := pipeline.FailedStage(err)
		logger.L().Error().Str("stage", stage).Err(err).Msg("margintrend failed")
		stop()
		os.Exit(1)
	}
}
