package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"stitch/internal/config"
	"stitch/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, check or print the configuration",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx), newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return services.Wrap(services.ErrConfiguration, "config", "init",
						target+" already exists; pass --overwrite to replace it", nil)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Pick a transcription.source; the openai source also needs openai_api_key or OPENAI_API_KEY.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves where config init writes, defaulting to the standard
// config location.
func initTarget(flagValue string) (string, error) {
	if flagValue = strings.TrimSpace(flagValue); flagValue == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

type configSummary struct {
	Path      string   `json:"path" yaml:"path"`
	FileFound bool     `json:"file_found" yaml:"file_found"`
	Source    string   `json:"source" yaml:"source"`
	Language  string   `json:"language" yaml:"language"`
	Chunk     float64  `json:"chunk_seconds" yaml:"chunk_seconds"`
	Overlap   float64  `json:"overlap_seconds" yaml:"overlap_seconds"`
	Strategy  string   `json:"merge_strategy" yaml:"merge_strategy"`
	Formats   []string `json:"formats" yaml:"formats"`
	Valid     bool     `json:"valid" yaml:"valid"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			summary := configSummary{
				Path:      ctx.configPath,
				FileFound: ctx.configSeen,
				Source:    cfg.Transcription.Source,
				Language:  cfg.Transcription.Language,
				Chunk:     cfg.Chunking.ChunkSeconds,
				Overlap:   cfg.Chunking.OverlapSeconds,
				Strategy:  cfg.Merge.Strategy,
				Formats:   cfg.Output.Formats,
				Valid:     true,
			}
			format, _ := ctx.outputFormat()
			if done, err := writeStructured(cmd, format, summary); done {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", summary.Path)
			if !summary.FileFound {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Source: %s (language %s)\n", summary.Source, summary.Language)
			fmt.Fprintf(out, "Chunking: %.1fs with %.1fs overlap, merge %s\n", summary.Chunk, summary.Overlap, summary.Strategy)
			fmt.Fprintf(out, "Formats: %s\n", strings.Join(summary.Formats, ", "))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			enc := toml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndentTables(true)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return nil
		},
	}
}
