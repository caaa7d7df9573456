// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum


package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects how Decorum writes its logs.
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal, panic or
	// disabled. Unknown values log at info.
	Level string

	// Format is json for log shippers or console for local development.
	Format string

	// Caller adds file:line to every entry.
	Caller bool

	// Timestamp stamps entries with RFC 3339 times.
	Timestamp bool

	// Output defaults to stderr.
	Output io.Writer
}

// DefaultConfig logs JSON at info to stderr.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// root holds the process logger. Loggers handed out earlier keep their
// writer when Init swaps it.
var root atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init builds the process logger from cfg. Calling it again replaces it.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	zc := zerolog.New(out).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	l := zc.Logger()
	root.Store(&l)
}

// parseLevel maps a configured level onto zerolog, accepting "warning" as
// an alias and falling back to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	return *root.Load()
}

// With starts a child logger of the process logger.
func With() zerolog.Context {
	return root.Load().With()
}

// ForSession returns a component logger bound to one designer session.
//
//	logger := logging.ForSession("ordersync", sess.ID)
func ForSession(component, sessionID string) zerolog.Logger {
	return With().Str("component", component).Str("session_id", sessionID).Logger()
}

// Info logs at info level on the process logger.
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
func Info() *zerolog.Event { return root.Load().Info() }

// Warn logs at warn level on the process logger.
func Warn() *zerolog.Event { return root.Load().Warn() }

// Error logs at error level on the process logger.
func Error() *zerolog.Event { return root.Load().Error() }

// Fatal logs and then exits the process with status 1.
func Fatal() *zerolog.Event { return root.Load().Fatal() }

// NewTestLogger writes JSON entries to w regardless of the configured format.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
