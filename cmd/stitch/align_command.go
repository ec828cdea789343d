package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stitch/internal/hypothesis"
	"stitch/internal/pipeline"
	"stitch/internal/services"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var baseName string
	var audioPath string
	var formatNames []string
	var strict bool

	cmd := &cobra.Command{
		Use:   "align <hypotheses.json>",
		Short: "Align recorded chunk hypotheses without audio or a recognizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := expandFlagPath(args[0])
			if err != nil {
				return err
			}
			file, err := hypothesis.LoadFile(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, pipeline.StagePlan, "load hypotheses", path, err)
			}
			cfg, err = applyOutputFlags(cfg, formatNames, "")
			if err != nil {
				return err
			}
			if outDir, err = expandFlagPath(outDir); err != nil {
				return err
			}
			if outDir == "" && cfg.Output.Dir == "" && strings.TrimSpace(audioPath) == "" {
				outDir = filepath.Dir(path)
			}
			if strings.TrimSpace(baseName) == "" && strings.TrimSpace(audioPath) == "" {
				name := filepath.Base(path)
				baseName = strings.TrimSuffix(name, filepath.Ext(name))
			}

			runner, cleanup, err := ctx.newRunner(cfg, runnerOptions{source: hypothesis.NewFileSource(file), noCache: true})
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := runner.Replay(cmd.Context(), file, pipeline.Request{AudioPath: audioPath, OutputDir: outDir, BaseName: baseName})
			if err != nil {
				return err
			}
			summary := summarizeRun(res, string(runner.Stages().Strategy()))
			format, _ := ctx.outputFormat()
			if ok, err := writeStructured(cmd, format, summary); err != nil {
				return err
			} else if !ok {
				printRunSummary(cmd.OutOrStdout(), summary, cfg.Quality.MinScore, shouldColorize(cmd.OutOrStdout()))
			}
			if strict && !summary.Passed {
				return services.Wrap(services.ErrValidation, pipeline.StageAnalyze, "quality", "score below quality.min_score", nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory for output files (default: output.dir or next to the hypotheses file)")
	cmd.Flags().StringVar(&baseName, "name", "", "Base name for output files (default: hypotheses file name)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio file the hypotheses were recorded from, for naming and reports")
	cmd.Flags().StringSliceVarP(&formatNames, "format", "f", nil, "Output formats to write (repeatable; overrides output.formats)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the run scores below quality.min_score")
	return cmd
}
