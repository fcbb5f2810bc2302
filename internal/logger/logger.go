// =============================================================================
// MX to MT101 Converter - Logging
// =============================================================================
//
// This module builds the zerolog logger shared by the CLI and the batch
// pipeline. The codec packages (xmlparser, mtwriter, validation) never log.
//
// OUTPUT:
//   - "console": human readable lines on stderr
//   - "json" (or anything else): one JSON object per line on stderr
//   - An optional log file receives the same records as JSON
//
// =============================================================================

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const simpleTimeFormat = "02-01-2006 15:04:05"

// Options selects the logger output.
type Options struct {
	// Level is a zerolog level name. Empty means "info".
	Level string

	// Format is "console" or "json".
	Format string

	// File, when set, receives a JSON copy of every record.
	File string

	// Writers replaces stderr as the primary output. Used by tests.
	Writers []io.Writer
}

// New constructs a zerolog logger from opts. The returned closer releases
// the log file, if one was opened; it is never nil.
func New(opts Options) (*zerolog.Logger, io.Closer, error) {
	lvl, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	var primary io.Writer
	switch {
	case len(opts.Writers) > 0:
		primary = io.MultiWriter(opts.Writers...)
	case strings.EqualFold(opts.Format, "console"):
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: simpleTimeFormat}
		primary = cw
	default:
		primary = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	output := primary
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, closer, fmt.Errorf("failed to open log file: %w", err)
		}
		closer = file
		output = zerolog.MultiLevelWriter(primary, file)
	}

	logger := zerolog.New(output).With().Timestamp().Logger().Level(lvl)
	return &logger, closer, nil
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func parseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
