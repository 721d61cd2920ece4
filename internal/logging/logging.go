// Package logging wraps log/slog with the exact "FileCache (<cache>):
// <message>" prefix format spec.md requires for cleaner output, and a
// lumberjack-backed handler so logs rotate the way the teacher's
// internal/slogutil configures them.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
)

// Config configures the rotating JSON handler shared by every named
// cache in the process.
type Config struct {
	Level     slog.Leveler
	LogPath   string // empty disables file output, console only
	AddSource bool
}

func mergeConfig(cfg *Config) Config {
	if cfg == nil {
		return Config{Level: slog.LevelInfo}
	}
	out := *cfg
	if out.Level == nil {
		out.Level = slog.LevelInfo
	}
	return out
}

// NewHandler builds a slog.Handler writing JSON to stdout and,
// when LogPath is set, to a rotating lumberjack-backed file.
func NewHandler(cfg *Config) slog.Handler {
	merged := mergeConfig(cfg)

	var w io.Writer = os.Stdout
	if merged.LogPath != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   merged.LogPath,
			MaxSize:    5,
			MaxAge:     14,
			MaxBackups: 5,
		})
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     merged.Level,
		AddSource: merged.AddSource,
	})
}

// Logger emits the "FileCache (<cache>): <message>" formatted records
// spec.md requires verbatim for the cleaners' verbose-mode messages.
type Logger struct {
	base  *slog.Logger
	cache string
}

// New wraps base for cache.
func New(base *slog.Logger, cache string) *Logger {
	if base == nil {
		base = slog.Default()
	}
	return &Logger{base: base, cache: cache}
}

func (l *Logger) prefix(msg string) string {
	return "FileCache (" + l.cache + "): " + msg
}

// Info logs at info level with the FileCache prefix.
func (l *Logger) Info(msg string, args ...any) {
	l.base.Info(l.prefix(msg), args...)
}

// Error logs at error level with the FileCache prefix.
func (l *Logger) Error(msg string, args ...any) {
	l.base.Error(l.prefix(msg), args...)
}

// Warn logs at warn level with the FileCache prefix.
func (l *Logger) Warn(msg string, args ...any) {
	l.base.Warn(l.prefix(msg), args...)
}
