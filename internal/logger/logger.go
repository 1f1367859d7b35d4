// Package logger provides leveled, structured logging for recall.
// It keeps a small package-level API so any layer can log without
// threading a logger through constructors. Output goes to stderr.
// The --verbose flag lowers the level to debug so users can follow
// the ingestion and retrieval pipelines.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output
	Output io.Writer
}

var (
	mu      sync.RWMutex
	verbose bool
	cfg     = Config{Level: "warn", Pretty: true, Output: os.Stderr}
	log     = build(cfg, false)
)

// Configure replaces the logger configuration.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	if c.Output == nil {
		c.Output = os.Stderr
	}
	cfg = c
	log = build(cfg, verbose)
}

// SetVerbose enables or disables verbose (debug) logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build(cfg, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	cfg.Output = w
	log = build(cfg, verbose)
}

// With returns a sub-logger tagged with a component name.
func With(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.With().Str("component", component).Logger()
}

// Debug logs a message when verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Section logs a pipeline stage header when verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Str("section", name).Msg(fmt.Sprintf("=== %s ===", name))
}

// Info logs an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}

// Error logs an error with its cause attached.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Err(err).Msgf(format, args...)
}

func build(c Config, debug bool) zerolog.Logger {
	level := parseLevel(c.Level)
	if debug {
		level = zerolog.DebugLevel
	}

	out := c.Output
	if c.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(out),
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
