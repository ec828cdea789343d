package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"stitch/internal/preflight"
	"stitch/internal/quality"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Score", statusError, "0.400", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Score:", "[ERROR] 0.400")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Score", statusOK, "1.000", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Work directory", Passed: true, Detail: "/tmp/work (read/write ok)"},
		{Name: "uvx", Passed: false, Detail: "not found"},
	}
	lines := checkLines(results, false)
	if len(lines) != 5 {
		t.Fatalf("expected header, rule, two checks and summary, got %d lines", len(lines))
	}
	if !strings.Contains(lines[2], "[OK] /tmp/work") {
		t.Fatalf("unexpected first check line %q", lines[2])
	}
	if !strings.Contains(lines[3], "[ERROR] not found") {
		t.Fatalf("unexpected second check line %q", lines[3])
	}
	if !strings.Contains(lines[4], "1 of 2 checks failed: uvx") {
		t.Fatalf("unexpected summary %q", lines[4])
	}
}

func TestReportLines(t *testing.T) {
	report := quality.Report{
		Score: 0.5,
		Details: quality.Details{
			SegmentCount:          3,
			OverlapViolations:     0,
			HyphenNormalizationOK: false,
			CPSWithinRangeRatio:   1,
			CPSHistogram:          quality.Histogram{WithinRange: 3},
			BoundaryCounts:        quality.Histogram{WithinRange: 2, AboveMax: 1},
			SkippedEntries:        2,
		},
	}
	joined := strings.Join(reportLines("demo.srt", report, 0.8, false), "\n")
	for _, want := range []string{
		"== demo.srt ==",
		"[ERROR] 0.500 (threshold 0.80)",
		"Overlaps:",
		"[WARN] spaced hyphen found",
		"(1 outside)",
		"[WARN] 2 malformed entries",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in:\n%s", want, joined)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
