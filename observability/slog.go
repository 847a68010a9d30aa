package observability

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug; slog has no native trace level.
const LevelTrace = slog.LevelDebug - 4

// SlogObserver is an [Observer] backed by a standard library *slog.Logger.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps logger as an Observer. A nil logger falls back to
// slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) log(ctx context.Context, level slog.Level, msg string, attrs []Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, slog.Any(attr.Key, attr.Value))
	}
	o.logger.Log(ctx, level, msg, args...)
}

// Trace logs at [LevelTrace].
func (o *SlogObserver) Trace(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, LevelTrace, msg, attrs)
}

// Debug logs at slog.LevelDebug.
func (o *SlogObserver) Debug(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs at slog.LevelInfo.
func (o *SlogObserver) Info(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs at slog.LevelWarn.
func (o *SlogObserver) Warn(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs at slog.LevelError.
func (o *SlogObserver) Error(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}
