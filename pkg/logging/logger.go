// Package logging configures zerolog for the item bank tools.
//
// Logs always go to a writer other than stdout in the CLI, since stdout
// carries the fetched JSON.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

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

// DefaultConfig returns the CLI logger configuration: warnings and errors
// only, as JSON on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(toZerolog(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel validates a user-supplied level name. "warning" is accepted as
// an alias for warn.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q: must be one of debug, info, warn, error", s)
	}
}

// toZerolog converts LogLevel to zerolog.Level. Unknown levels map to info.
func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
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

// NewRunLogger creates a component logger tagged with a fresh run_id, so all
// lines of one invocation can be grouped.
func NewRunLogger(component string) (zerolog.Logger, string) {
	runID := uuid.NewString()
	return log.With().
		Str("component", component).
		Str("run_id", runID).
		Logger(), runID
}

// Log Level Guidelines:
//
// Debug: request construction
//   - Endpoint URL, action, consumer key, security timestamp
//   - Resolved configuration
//
// Info: normal operation
//   - Request completed (status, body size)
//   - Metrics file written
//
// Warn: the request reached the API but failed
//   - Non-2xx status with its error_class
//
// Error: the run is aborted
//   - Network failures
//   - Invalid arguments reported by the CLI
//
// Context Fields:
//   - component: emitting package
//   - run_id: one per CLI invocation
//   - endpoint: full Data API URL
//   - status: HTTP status code
//   - error_class: client, server, network, decode
//
// Secrets are never logged; the consumer secret and signature stay out of
// every event.
