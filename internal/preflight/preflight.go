package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"stitch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options toggles checks that reach outside the machine.
type Options struct {
	// Online pings the OpenAI API when the openai source is selected.
	Online bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	if cfg.Transcription.CacheEnabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}
	if cfg.Output.Dir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Output.Dir))
	}
	if cfg.Reports.Enabled && cfg.Paths.ReportDB != "" {
		results = append(results, CheckDirectoryAccess("Report directory", filepath.Dir(cfg.Paths.ReportDB)))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		if status.Optional && !status.Available {
			continue
		}
		detail := status.Detail
		if status.Available {
			detail = status.Path
			if status.Version != "" {
				detail += " (" + status.Version + ")"
			}
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}

	if strings.EqualFold(cfg.Transcription.Source, "openai") {
		if opts.Online {
			results = append(results, CheckOpenAI(ctx, cfg.Transcription.OpenAIAPIKey, cfg.Transcription.OpenAIBaseURL))
		} else {
			results = append(results, CheckOpenAIKey(cfg.Transcription.OpenAIAPIKey))
		}
	}
	return results
}

// Failures returns the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
