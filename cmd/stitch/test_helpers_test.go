package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stitch/internal/config"
	"stitch/internal/pipeline"
	"stitch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "xdg-cache"))

	configPath := filepath.Join(base, "stitch.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeRecording stores a 60 second recording chunked at 20/5 seconds and
// returns its path.
func writeRecording(t *testing.T, dir, name string) string {
	t.Helper()
	planner := testsupport.NewConfig(t, testsupport.WithChunking(20, 5))
	stages, err := pipeline.NewStages(planner, nil)
	if err != nil {
		t.Fatalf("NewStages: %v", err)
	}
	chunks, err := stages.Plan(60, 16000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	truth := testsupport.NumberedSpeech(60, 5)
	path := filepath.Join(dir, name)
	testsupport.WriteHypothesisFile(t, path, testsupport.RecordedFile(60, 16000, 20, 5, testsupport.Hypotheses(truth, chunks)))
	return path
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
