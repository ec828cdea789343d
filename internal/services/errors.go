package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers. Every error leaving a stage wraps exactly one of them so the
// CLI can pick an exit status and the logs can group failures.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

var kinds = []struct {
	marker error
	name   string
	exit   int
}{
	{ErrConfiguration, "configuration", 2},
	{ErrValidation, "validation", 3},
	{ErrNotFound, "not_found", 3},
	{ErrTimeout, "timeout", 1},
	{ErrExternalTool, "external_tool", 1},
	{ErrTransient, "transient", 1},
}

// Wrap tags err with marker and prefixes it with "stage: operation: message".
// Blank parts are skipped. A nil marker means ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var b strings.Builder
	for _, part := range []string{stage, operation, message} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		b.WriteString("service failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, b.String(), err)
	}
	return fmt.Errorf("%w: %s", marker, b.String())
}

// Kind names the first marker err carries, or "unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.name
		}
	}
	return "unknown"
}

// ExitCode maps a command error to the process exit status: 2 for
// configuration problems, 3 for bad input and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.exit
		}
	}
	return 1
}
