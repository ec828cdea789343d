package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stitch/internal/config"
	"stitch/internal/language"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The json source is selected so no external tools are needed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.ReportDB = filepath.Join(base, "reports.db")
	cfgVal.Output.Dir = filepath.Join(base, "out")
	cfgVal.Transcription.Source = "json"
	cfgVal.Transcription.CacheEnabled = false
	cfgVal.Cleanup.ContinuationWords = language.ContinuationWords("en")
	cfgVal.Segmentation.ClauseWords = language.ClauseWords("en")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSource selects the hypothesis source.
func WithSource(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Source = name
	}
}

// WithFormats sets the output formats.
func WithFormats(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Formats = append([]string(nil), names...)
	}
}

// WithConcurrency sets the transcription concurrency.
func WithConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Concurrency = n
	}
}

// WithCache enables the hypothesis cache under the temp directory.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.CacheEnabled = true
	}
}

// WithChunking overrides chunk length and overlap.
func WithChunking(chunkSeconds, overlapSeconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Chunking.ChunkSeconds = chunkSeconds
		b.cfg.Chunking.OverlapSeconds = overlapSeconds
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg, ffprobe and uvx are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "uvx"}
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
	}
}

// StubBinaries writes executables that exit 0 into dir and prepends dir to
// PATH for the rest of the test.
func StubBinaries(t testing.TB, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, script, 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
