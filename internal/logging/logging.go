// Package logging configures the process-wide slog logger: coloured console output plus a
// size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FileName   = "devicesync.log"
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

type Options struct {
	// Dir holds the log file. Empty disables file logging.
	Dir   string
	Level slog.Level
	// Console defaults to os.Stdout.
	Console *os.File
	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation. Zero values pick defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: invalid level %q", s)
	}
	return level, nil
}

// Setup installs the default logger. The returned closer flushes the log file.
func Setup(opts Options) (io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	handlers := []slog.Handler{
		tint.NewHandler(console, &tint.Options{
			Level:      opts.Level,
			TimeFormat: timeFormat,
			NoColor:    !isatty.IsTerminal(console.Fd()),
		}),
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: create %s: %w", opts.Dir, err)
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, FileName),
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: opts.Level}))
		closer = file
	}

	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
	return closer, nil
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
