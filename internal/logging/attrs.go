package logging

import (
	"context"
	"log/slog"
	"math"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Seconds records a media time, rounded to the millisecond.
func Seconds(key string, value float64) Attr { return slog.Float64(key, roundMillis(value)) }

// Chunk records a chunk index under the standard key.
func Chunk(index int) Attr { return slog.Int(FieldChunkIndex, index) }

// Span records a media interval as a start/end group.
func Span(key string, start, end float64) Attr {
	return slog.Group(key, slog.Float64("start", roundMillis(start)), slog.Float64("end", roundMillis(end)))
}

// Decision records which reconciliation path a heuristic took.
func Decision(result string) Attr { return slog.String(FieldDecision, result) }

func Group(key string, attrs ...Attr) Attr {
	return slog.Group(key, attrsToArgs(attrs)...)
}

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func Args(attrs ...Attr) []any {
	return attrsToArgs(attrs)
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

const (
	defaultErrorHint = "rerun with logging.level = \"debug\" for details"
	defaultImpact    = "output may be incomplete"
)

// WarnWithContext logs a warning with enforced event_type, error_hint, and impact fields.
// If any of these fields are missing from attrs, defaults are injected.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, defaultErrorHint)
	attrs = withDefault(attrs, FieldImpact, defaultImpact)
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error with enforced event_type and error_hint fields.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, defaultErrorHint)
	logger.Error(msg, Args(attrs...)...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	for _, a := range attrs {
		if a.Key == key {
			return attrs
		}
	}
	return append(attrs, String(key, value))
}

// roundMillis trims float noise from media times.
func roundMillis(seconds float64) float64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return seconds
	}
	return math.Round(seconds*1000) / 1000
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
