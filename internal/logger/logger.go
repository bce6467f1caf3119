package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	base  zerolog.Logger
	ready bool
)

// Options controls how Init builds the global logger.
//
//   - Level: debug|info|warn|error (default: info)
//   - Pretty: human readable console output instead of JSON
//   - Out: destination writer (default: os.Stdout)
type Options struct {
	Level  string
	Pretty bool
	Out    io.Writer
}

// Init configures the global JSON logger.
func Init(opts Options) {
	level := parseLevel(opts.Level)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	var w io.Writer = os.Stdout
	if opts.Out != nil {
		w = opts.Out
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Logger().Level(level)
	ready = true
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	if !ready {
		Init(Options{Level: os.Getenv("LOG_LEVEL")})
	}
	return &base
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
