package main

import (
	"fmt"
	"io"
	"time"

	"stitch/internal/pipeline"
	"stitch/internal/quality"
)

// runSummary is the printable outcome of one pipeline run.
type runSummary struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	SourcePath string            `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	Stream     string            `json:"stream,omitempty" yaml:"stream,omitempty"`
	Chunks     int               `json:"chunks" yaml:"chunks"`
	Words      int               `json:"words" yaml:"words"`
	Segments   int               `json:"segments" yaml:"segments"`
	Duration   float64           `json:"duration_seconds" yaml:"duration_seconds"`
	Strategy   string            `json:"merge_strategy" yaml:"merge_strategy"`
	Outputs    []pipeline.Output `json:"outputs" yaml:"outputs"`
	Score      float64           `json:"score" yaml:"score"`
	Passed     bool              `json:"passed" yaml:"passed"`
	ReportID   int64             `json:"report_id,omitempty" yaml:"report_id,omitempty"`
	Elapsed    string            `json:"elapsed" yaml:"elapsed"`
	Report     quality.Report    `json:"report" yaml:"report"`
}

func summarizeRun(res pipeline.Result, strategy string) runSummary {
	summary := runSummary{
		RunID:      res.RunID,
		SourcePath: res.SourcePath,
		Chunks:     len(res.Chunks),
		Words:      len(res.Alignment.Result.Words),
		Segments:   len(res.Alignment.Result.Segments),
		Duration:   res.Alignment.Result.Duration,
		Strategy:   strategy,
		Outputs:    res.Outputs,
		Score:      res.Report.Score,
		Passed:     res.Passed,
		ReportID:   res.ReportID,
		Elapsed:    res.Elapsed.Round(time.Millisecond).String(),
		Report:     res.Report,
	}
	if res.Stream.Found() {
		summary.Stream = res.Stream.Label()
	}
	if summary.Outputs == nil {
		summary.Outputs = []pipeline.Output{}
	}
	return summary
}

func printRunSummary(w io.Writer, summary runSummary, threshold float64, colorize bool) {
	title := summary.SourcePath
	if title == "" {
		title = summary.RunID
	}
	lines := renderSectionHeader(title, colorize)
	lines = append(lines, renderStatusLine("Run", statusInfo, summary.RunID, colorize))
	if summary.Stream != "" {
		lines = append(lines, renderStatusLine("Audio stream", statusInfo, summary.Stream, colorize))
	}
	lines = append(lines,
		renderStatusLine("Alignment", statusInfo, fmt.Sprintf("%d chunks, %d words, %d segments (%s)", summary.Chunks, summary.Words, summary.Segments, summary.Strategy), colorize),
	)
	for _, out := range summary.Outputs {
		lines = append(lines, renderStatusLine("Wrote "+out.Format, statusOK, out.Path, colorize))
	}
	scoreKind := statusOK
	if !summary.Passed {
		scoreKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Quality", scoreKind, fmt.Sprintf("%.3f (threshold %.2f)", summary.Score, threshold), colorize))
	if summary.ReportID > 0 {
		lines = append(lines, renderStatusLine("Report", statusInfo, fmt.Sprintf("#%d", summary.ReportID), colorize))
	}
	lines = append(lines, renderStatusLine("Elapsed", statusInfo, summary.Elapsed, colorize))
	printLines(w, lines)
}
