package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"stitch/internal/formats"
)

type formatInfo struct {
	Name                   string `json:"name" yaml:"name"`
	Extension              string `json:"extension" yaml:"extension"`
	RequiresWordTimestamps bool   `json:"requires_word_timestamps" yaml:"requires_word_timestamps"`
	SupportsHighlighting   bool   `json:"supports_highlighting" yaml:"supports_highlighting"`
	Configured             bool   `json:"configured" yaml:"configured"`
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List output formats and their capabilities",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var configured []string
			if cfg, err := ctx.ensureConfig(); err == nil {
				configured = cfg.Output.Formats
			}
			infos := make([]formatInfo, 0, len(formats.All()))
			for _, spec := range formats.All() {
				infos = append(infos, formatInfo{
					Name:                   spec.Name,
					Extension:              spec.Extension,
					RequiresWordTimestamps: spec.RequiresWordTimestamps,
					SupportsHighlighting:   spec.SupportsHighlighting,
					Configured:             slices.Contains(configured, spec.Name),
				})
			}

			format, _ := ctx.outputFormat()
			if ok, err := writeStructured(cmd, format, infos); ok || err != nil {
				return err
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.Name,
					info.Extension,
					yesNo(info.RequiresWordTimestamps),
					yesNo(info.SupportsHighlighting),
					yesNo(info.Configured),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableView{
				Headers: []string{"Format", "Extension", "Word timestamps", "Highlighting", "Configured"},
				Rows:    rows,
			}))
			return nil
		},
	}
}
