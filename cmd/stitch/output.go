package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured reports whether format was a structured one and wrote v.
func writeStructured(cmd *cobra.Command, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		return true, writeJSON(cmd, v)
	case outputYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}
