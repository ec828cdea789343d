package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stitch/internal/config"
	"stitch/internal/pipeline"
	"stitch/internal/services"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var hypothesesPath string
	var outDir string
	var baseName string
	var formatNames []string
	var noCache bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio>...",
		Short: "Transcribe audio files into subtitles and transcripts",
		Long: "Transcribe cuts each audio file into overlapping chunks, recognizes them with the\n" +
			"configured source, reconciles the overlaps and writes the configured formats.\n" +
			"With --hypotheses the recorded chunk hypotheses replace the recognizer.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(baseName) != "" && len(args) > 1 {
				return services.Wrap(services.ErrValidation, "", "transcribe", "--name applies to a single audio file", nil)
			}
			cfg, err = applyOutputFlags(cfg, formatNames, hypothesesPath)
			if err != nil {
				return err
			}
			if outDir, err = expandFlagPath(outDir); err != nil {
				return err
			}

			source, err := pipeline.NewSource(cfg, hypothesesPath)
			if err != nil {
				return err
			}
			runner, cleanup, err := ctx.newRunner(cfg, runnerOptions{source: source, noCache: noCache})
			if err != nil {
				return err
			}
			defer cleanup()

			format, _ := ctx.outputFormat()
			colorize := shouldColorize(cmd.OutOrStdout())
			strategy := string(runner.Stages().Strategy())
			summaries := make([]runSummary, 0, len(args))
			failed := 0
			for _, path := range args {
				res, err := runner.Run(cmd.Context(), pipeline.Request{AudioPath: path, OutputDir: outDir, BaseName: baseName})
				if err != nil {
					return err
				}
				summary := summarizeRun(res, strategy)
				if !summary.Passed {
					failed++
				}
				summaries = append(summaries, summary)
				if format == outputText {
					printRunSummary(cmd.OutOrStdout(), summary, cfg.Quality.MinScore, colorize)
				}
			}
			if _, err := writeStructured(cmd, format, summaries); err != nil {
				return err
			}
			if strict && failed > 0 {
				return services.Wrap(services.ErrValidation, pipeline.StageAnalyze, "quality",
					fmt.Sprintf("%d of %d runs scored below %.2f", failed, len(summaries), cfg.Quality.MinScore), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hypothesesPath, "hypotheses", "", "Use recorded chunk hypotheses from a JSON file instead of a recognizer")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for output files (default: output.dir or next to the audio)")
	cmd.Flags().StringVar(&baseName, "name", "", "Base name for output files (single input only)")
	cmd.Flags().StringSliceVarP(&formatNames, "format", "f", nil, "Output formats to write (repeatable; overrides output.formats)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the hypothesis cache")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when a run scores below quality.min_score")
	return cmd
}

// applyOutputFlags returns a copy of cfg with command-line overrides applied.
// A hypotheses file selects the json source.
func applyOutputFlags(cfg *config.Config, formatNames []string, hypothesesPath string) (*config.Config, error) {
	clone := *cfg
	if len(formatNames) > 0 {
		names := make([]string, 0, len(formatNames))
		for _, name := range formatNames {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				names = append(names, name)
			}
		}
		clone.Output.Formats = names
	}
	if strings.TrimSpace(hypothesesPath) != "" {
		clone.Transcription.Source = pipeline.SourceJSON
	}
	if _, err := pipeline.OutputFormats(&clone); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "--format", "", err)
	}
	return &clone, nil
}

func expandFlagPath(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "", "resolve path", value, err)
	}
	return expanded, nil
}
