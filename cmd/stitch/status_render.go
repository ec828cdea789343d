package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"stitch/internal/preflight"
	"stitch/internal/quality"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// checkLines renders preflight results followed by a summary line.
func checkLines(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Preflight", colorize)
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	failed := preflight.Failures(results)
	if len(failed) == 0 {
		return append(lines, renderStatusLine("Summary", statusOK, fmt.Sprintf("%d checks passed", len(results)), colorize))
	}
	names := make([]string, len(failed))
	for i, r := range failed {
		names[i] = r.Name
	}
	return append(lines, renderStatusLine("Summary", statusError,
		fmt.Sprintf("%d of %d checks failed: %s", len(failed), len(results), strings.Join(names, ", ")), colorize))
}

// reportLines renders a quality report against threshold.
func reportLines(title string, report quality.Report, threshold float64, colorize bool) []string {
	d := report.Details
	lines := renderSectionHeader(title, colorize)

	scoreKind := statusOK
	if !report.Passed(threshold) {
		scoreKind = statusError
	}
	lines = append(lines,
		renderStatusLine("Score", scoreKind, fmt.Sprintf("%.3f (threshold %.2f)", report.Score, threshold), colorize),
		renderStatusLine("Segments", statusInfo, fmt.Sprintf("%d cues, %d text lines", d.SegmentCount, d.TextLineCount), colorize),
		renderStatusLine("Overlaps", countKind(d.OverlapViolations, statusError), fmt.Sprintf("%d", d.OverlapViolations), colorize),
	)
	if d.HyphenNormalizationOK {
		lines = append(lines, renderStatusLine("Hyphenation", statusOK, "normalized", colorize))
	} else {
		lines = append(lines, renderStatusLine("Hyphenation", statusWarn, "spaced hyphen found", colorize))
	}
	lines = append(lines,
		renderStatusLine("Line length", countKind(d.LineLengthViolations, statusWarn),
			fmt.Sprintf("%d over limit (%.1f%%)", d.LineLengthViolations, d.LineLengthViolationRatio*100), colorize),
		renderStatusLine("Reading rate", countKind(d.CPSHistogram.Outside(), statusWarn),
			fmt.Sprintf("%.1f%% within range (%d slow, %d fast)", d.CPSWithinRangeRatio*100, d.CPSHistogram.BelowMin, d.CPSHistogram.AboveMax), colorize),
		renderStatusLine("Durations", countKind(d.BoundaryCounts.Outside(), statusWarn),
			fmt.Sprintf("min %.2fs, median %.2fs, max %.2fs (%d outside)", d.DurationStats.Min, d.DurationStats.Median, d.DurationStats.Max, d.BoundaryCounts.Outside()), colorize),
	)
	if d.SkippedEntries > 0 {
		lines = append(lines, renderStatusLine("Skipped", statusWarn, fmt.Sprintf("%d malformed entries", d.SkippedEntries), colorize))
	}
	return lines
}

func countKind(count int, failing statusKind) statusKind {
	if count > 0 {
		return failing
	}
	return statusOK
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
