package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"stitch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribe", "whisperx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{services.Wrap(services.ErrConfiguration, "config", "validate", "bad", nil), 2},
		{services.Wrap(services.ErrValidation, "score", "parse", "bad", nil), 3},
		{services.Wrap(services.ErrNotFound, "reports", "get", "missing", nil), 3},
		{services.Wrap(services.ErrExternalTool, "transcribe", "ffmpeg", "failed", errors.New("io")), 1},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindNamesMarker(t *testing.T) {
	if got := services.Kind(nil); got != "" {
		t.Fatalf("Kind(nil) = %q", got)
	}
	if got := services.Kind(errors.New("plain")); got != "unknown" {
		t.Fatalf("Kind(plain) = %q", got)
	}
	err := services.Wrap(services.ErrTimeout, "transcribe", "chunk 3", "deadline exceeded", nil)
	if got := services.Kind(fmt.Errorf("run: %w", err)); got != "timeout" {
		t.Fatalf("Kind(timeout) = %q", got)
	}
	if got := services.Kind(services.Wrap(services.ErrNotFound, "reports", "get", "", nil)); got != "not_found" {
		t.Fatalf("Kind(not found) = %q", got)
	}
}
