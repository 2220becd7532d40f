// Package logger builds the structured loggers used by the service, backed
// by zerolog.
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches to console output for local runs.
	Pretty bool
	Output io.Writer // os.Stdout when nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New builds the application logger.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(opts.Level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

// NewAccess builds the access-log logger. An empty path writes to stdout;
// otherwise the file is opened for appending and must be closed by the caller.
func NewAccess(path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return accessLogger(os.Stdout), nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open access log: %w", err)
	}
	return accessLogger(f), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func accessLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("log", "access").Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
