package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stitch/internal/formats"
	"stitch/internal/pipeline"
	"stitch/internal/quality"
	"stitch/internal/services"
)

type scoreOutput struct {
	Path      string         `json:"path" yaml:"path"`
	Threshold float64        `json:"threshold" yaml:"threshold"`
	Passed    bool           `json:"passed" yaml:"passed"`
	Report    quality.Report `json:"report" yaml:"report"`
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var minScore float64
	var strict bool

	cmd := &cobra.Command{
		Use:   "score <subtitles>",
		Short: "Grade an SRT, WebVTT or JSON segment file",
		Long: "Score reads SRT or WebVTT cues, a JSON array of {start, end, text} entries, or a\n" +
			"stitch JSON transcript, and reports overlap, hyphenation, line length,\n" +
			"reading-rate and duration checks together with an overall score.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			analyzer, err := quality.New(pipeline.QualityOptions(cfg))
			if err != nil {
				return services.Wrap(services.ErrConfiguration, pipeline.StageAnalyze, "quality options", "", err)
			}
			path, err := expandFlagPath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return services.Wrap(services.ErrNotFound, pipeline.StageAnalyze, "read", path, err)
			}
			report, err := scoreData(analyzer, path, data)
			if err != nil {
				return err
			}

			threshold := cfg.Quality.MinScore
			if cmd.Flags().Changed("min-score") {
				threshold = minScore
			}
			out := scoreOutput{Path: path, Threshold: threshold, Passed: report.Passed(threshold), Report: report}
			format, _ := ctx.outputFormat()
			if ok, err := writeStructured(cmd, format, out); err != nil {
				return err
			} else if !ok {
				printLines(cmd.OutOrStdout(), reportLines(filepath.Base(path), report, threshold, shouldColorize(cmd.OutOrStdout())))
			}
			if strict && !out.Passed {
				return services.Wrap(services.ErrValidation, pipeline.StageAnalyze, "quality",
					fmt.Sprintf("score %.3f below %.2f", report.Score, threshold), nil)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Pass threshold (default: quality.min_score)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the score is below the threshold")
	return cmd
}

// scoreData grades subtitle cues or JSON entries. JSON input may be a bare
// entry array or an object carrying a segments array.
func scoreData(analyzer *quality.Analyzer, path string, data []byte) (quality.Report, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, err := decodeEntries(data)
		if err != nil {
			return quality.Report{}, services.Wrap(services.ErrValidation, pipeline.StageAnalyze, "parse json", path, err)
		}
		return analyzer.AnalyzeEntries(entries, entriesText(entries)), nil
	}
	parsed := formats.ParseCues(data)
	cues := make([]quality.Cue, len(parsed))
	for i, cue := range parsed {
		cues[i] = quality.Cue{Start: cue.Start, End: cue.End, Text: cue.Text}
	}
	return analyzer.Analyze(cues, string(data)), nil
}

func decodeEntries(data []byte) ([]map[string]any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if obj, ok := raw.(map[string]any); ok {
		segments, found := obj["segments"]
		if !found {
			return nil, fmt.Errorf("object has no segments array")
		}
		raw = segments
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of segments")
	}
	entries := make([]map[string]any, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			entry = map[string]any{}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// entriesText stands in for rendered output: one line per entry text line.
func entriesText(entries []map[string]any) string {
	var b strings.Builder
	for _, entry := range entries {
		text, _ := entry["text"].(string)
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String()
}
