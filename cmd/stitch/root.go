package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var outputFlag string

	ctx := newCommandContext(&configFlag, &outputFlag)

	rootCmd := &cobra.Command{
		Use:           "stitch",
		Short:         "Chunked transcription alignment and subtitle builder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.outputFormat(); err != nil {
				return err
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", outputText, "Output format: text, json or yaml")

	rootCmd.AddCommand(newTranscribeCommand(ctx))
	rootCmd.AddCommand(newAlignCommand(ctx))
	rootCmd.AddCommand(newScoreCommand(ctx))
	rootCmd.AddCommand(newFormatsCommand(ctx))
	rootCmd.AddCommand(newReportsCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
