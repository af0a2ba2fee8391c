// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every log line as the "service" field.
const ServiceName = "item-service"

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ParseLevel validates a level name. "warning" is accepted as "warn".
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level, defaulting to info.
func parseLevel(level LogLevel) zerolog.Level {
	parsed, err := ParseLevel(string(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	switch parsed {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-item outcomes (processed, not found)
//   - Worker start/stop, pool drain progress
//   - Store operations
//
// Info: Normal operation events
//   - Batch run start and completion summary
//   - HTTP server startup/shutdown
//
// Warn: Conditions that don't fail a batch
//   - Interrupted items (cancellation during delay, fetch or save)
//   - Rejected pool submissions
//   - Shutdown deadline reached
//
// Error: Error conditions requiring attention
//   - Failed item fetch/save (item excluded from the result)
//   - Batch dispatch or aggregation failures
//   - Configuration and startup errors
//
// Context Fields:
//   - component: Emitting component (engine, pool, api, store)
//   - run_id: Batch run identifier (ULID)
//   - item_id: Item identifier
//   - stage: Processing stage that was interrupted (delay, fetch, save)
//   - worker_id: Pool worker index
//   - batch_size: Number of IDs in a run
//   - duration: Run or request duration
