package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stitch/internal/logging"
	"stitch/internal/pipeline"
	"stitch/internal/preflight"
	"stitch/internal/services"
	"stitch/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var processExisting bool
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Transcribe audio files as they arrive in a directory",
		Long: "Watch processes new audio files in a directory, writing outputs next to each\n" +
			"file (or to output.dir). Files whose outputs already exist are skipped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := cfg.Watch.Dir
			if len(args) == 1 {
				if dir, err = expandFlagPath(args[0]); err != nil {
					return err
				}
			}
			if strings.TrimSpace(dir) == "" {
				return services.Wrap(services.ErrConfiguration, "", "watch", "no directory given (pass one or set watch.dir)", nil)
			}

			if !skipChecks {
				if failed := preflight.Failures(preflight.RunAll(cmd.Context(), cfg, preflight.Options{})); len(failed) > 0 {
					names := make([]string, len(failed))
					for i, r := range failed {
						names[i] = r.Name + " (" + r.Detail + ")"
					}
					return services.Wrap(services.ErrConfiguration, "", "preflight", strings.Join(names, "; "), nil)
				}
			}

			source, err := pipeline.NewSource(cfg, "")
			if err != nil {
				return err
			}
			runner, cleanup, err := ctx.newRunner(cfg, runnerOptions{source: source})
			if err != nil {
				return err
			}
			defer cleanup()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			handler := func(runCtx context.Context, path string) error {
				res, err := runner.Run(runCtx, pipeline.Request{AudioPath: path})
				if err != nil {
					return err
				}
				logger.Info("watched file processed",
					logging.String(logging.FieldEventType, "watch_processed"),
					logging.String(logging.FieldSourceFile, path),
					logging.String(logging.FieldRunID, res.RunID),
					logging.Float64("score", res.Report.Score),
					logging.Bool("passed", res.Passed),
				)
				return nil
			}
			w, err := watch.New(watch.Options{
				Dir:            dir,
				Extensions:     cfg.Watch.Extensions,
				MaxConcurrent:  cfg.Watch.MaxConcurrent,
				Settle:         time.Duration(cfg.Watch.SettleSeconds) * time.Second,
				ProcessOnStart: cfg.Watch.ProcessOnStart || processExisting,
				Skip:           runner.OutputsExist,
			}, handler, logger)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "", "watch", dir, err)
			}
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&processExisting, "existing", false, "Also process files already in the directory")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks before watching")
	return cmd
}
