// Package log bootstraps wayle's global zerolog logger and hands out
// per-component child loggers, mirroring the shape of cuemby-warren's
// pkg/log: a package-level Logger, an Init that picks level/format, and
// With* helpers that attach a structured field.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger. Components derive their own
// logger from it via WithComponent rather than logging through it
// directly.
var Logger zerolog.Logger

// Level mirrors the subset of zerolog levels wayle's config exposes.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format selects the output encoding.
type Format string

const (
	// FormatConsole is the human-readable, colorized console writer —
	// the default for interactive use.
	FormatConsole Format = "console"
	// FormatJSON emits one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// Config controls Init.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Init installs the process-wide logger. Safe to call again on config
// hot-reload (§4.6) to change level/format without restarting services.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Format == FormatJSON {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}

	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func init() {
	// A usable default before Init runs, so package-level code executed
	// during tests or early bootstrap never logs to a zero-value
	// logger.
	Init(Config{Level: InfoLevel, Format: FormatConsole})
}

// WithComponent returns a child logger tagged with component, e.g.
// "audio", "notification", "systray", "config".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithService is an alias for WithComponent kept for call sites that
// read more naturally talking about "the service's logger".
func WithService(name string) zerolog.Logger {
	return WithComponent(name)
}
