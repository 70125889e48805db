package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger. format is "json" or "text".
func New(level, format string) *slog.Logger {
	return NewWriter(os.Stdout, level, format)
}

func NewWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return slog.LevelDebug - 1
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BadgerLogger routes badger's printf-style logging into slog.
type BadgerLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

func NewBadgerLogger(logger *slog.Logger) *BadgerLogger {
	return &BadgerLogger{
		ctx:    context.Background(),
		logger: logger.With("component", "badger"),
	}
}

func (l *BadgerLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l *BadgerLogger) Warningf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

// Infof is demoted to debug, badger is chatty at info.
func (l *BadgerLogger) Infof(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *BadgerLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug-1, format, args...)
}

func (l *BadgerLogger) log(level slog.Level, format string, args ...any) {
	if !l.logger.Enabled(l.ctx, level) {
		return
	}
	l.logger.Log(l.ctx, level, strings.TrimSpace(fmt.Sprintf(format, args...)))
}
