package strategy

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Log records finalizer errors with a slog.Logger.
type Log struct {
	logger *slog.Logger
	level  slog.Level
	msg    string
}

// LogOption configures a Log strategy.
type LogOption func(*Log)

// WithLevel sets the record level. Default: slog.LevelError.
func WithLevel(level slog.Level) LogOption {
	return func(l *Log) { l.level = level }
}

// WithMessage sets the record message. Default: "finalizer failed".
func WithMessage(msg string) LogOption {
	return func(l *Log) { l.msg = msg }
}

// NewLog returns a Log strategy. A nil logger selects slog.Default().
func NewLog(logger *slog.Logger, opts ...LogOption) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Log{logger: logger, level: slog.LevelError, msg: "finalizer failed"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewConsoleLog returns a Log strategy that writes colorized lines to w.
func NewConsoleLog(w io.Writer, noColor bool, opts ...LogOption) *Log {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
	return NewLog(slog.New(handler), opts...)
}

// Handle implements Handler.
func (l *Log) Handle(ctx context.Context, err error) {
	l.logger.LogAttrs(ctx, l.level, l.msg, tint.Err(err))
}
