// Package logging builds zerolog loggers for the broker-wide sink and
// per-session sinks, with size+retention rotation via lumberjack, grounded
// on telnet2-opencode/go-opencode's internal/logging Init(Config) shape and
// the original source's loguru.add(rotation="10 MB", retention="1 day").
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a rotated file sink plus an optional console mirror.
type Options struct {
	Path       string
	Level      string
	MaxSizeMB  int
	RetainDays int
	Console    bool
}

// New builds a zerolog.Logger writing rotated JSON lines to Options.Path,
// optionally mirrored to stderr in console form for interactive debugging.
func New(opts Options) zerolog.Logger {
	rotator := &lumberjack.Logger{
		Filename: opts.Path,
		MaxSize:  maxOrDefault(opts.MaxSizeMB, 10),
		MaxAge:   maxOrDefault(opts.RetainDays, 1),
		Compress: false,
	}

	var w io.Writer = rotator
	if opts.Console {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		w = zerolog.MultiLevelWriter(rotator, console)
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ForSession derives a per-session child logger tagged with session_id,
// matching the per-client loguru sink the original manager/client.py binds
// under LOG_DIR/clients/<id>.log.
func ForSession(base zerolog.Logger, sessionID string) zerolog.Logger {
	return base.With().Str("session_id", sessionID).Logger()
}

func maxOrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
