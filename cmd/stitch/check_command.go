package main

import (
	"github.com/spf13/cobra"

	"stitch/internal/preflight"
	"stitch/internal/services"
)

type checkOutput struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, external tools and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Online: online})

			format, _ := ctx.outputFormat()
			out := make([]checkOutput, len(results))
			for i, r := range results {
				out[i] = checkOutput(r)
			}
			if ok, err := writeStructured(cmd, format, out); err != nil {
				return err
			} else if !ok {
				printLines(cmd.OutOrStdout(), checkLines(results, shouldColorize(cmd.OutOrStdout())))
			}
			if failed := preflight.Failures(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "", "preflight", "one or more checks failed", nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also contact remote APIs")
	return cmd
}
