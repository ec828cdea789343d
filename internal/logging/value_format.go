package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05.000"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// plainValue renders v without quoting, for subject and component fields.
func plainValue(v slog.Value) string {
	return renderValue(v, false)
}

// formatValue renders v for key=value output, quoting when needed.
func formatValue(v slog.Value) string {
	return renderValue(v, true)
}

func renderValue(v slog.Value, quote bool) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(roundMillis(v.Float64()), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if quote && needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
