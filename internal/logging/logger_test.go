package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stitch/internal/config"
	"stitch/internal/logging"
	"stitch/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "stitch.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFormatsSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "merge")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "merger")).Info("merged", logging.Int("words", 12))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"[run 01234567 · merge]", "merger: merged", "words=12"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" || entry["k"] != "v" {
		t.Fatalf("unexpected json entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-xyz")
	ctx = services.WithStage(ctx, "transcribe")
	ctx = services.WithChunkIndex(ctx, 4)

	fields := logging.ContextFields(ctx)
	want := map[string]string{
		logging.FieldRunID:      "run-xyz",
		logging.FieldStage:      "transcribe",
		logging.FieldChunkIndex: "4",
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for _, f := range fields {
		if want[f.Key] != f.Value.String() {
			t.Fatalf("field %s = %q, want %q", f.Key, f.Value.String(), want[f.Key])
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "chunk skipped", "chunk_skipped", logging.String(logging.FieldImpact, "gap in transcript"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "chunk_skipped" {
		t.Fatalf("missing event type: %v", entry)
	}
	if entry[logging.FieldImpact] != "gap in transcript" {
		t.Fatalf("impact must not be overwritten: %v", entry)
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint: %v", entry)
	}
}

func TestFormatSubject(t *testing.T) {
	if got := logging.FormatSubject("", "", ""); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
	if got := logging.FormatSubject("abc", "", "2"); got != "run abc · chunk #2" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestMediaTimesAreRoundedToMilliseconds(t *testing.T) {
	dir := t.TempDir()
	consolePath := filepath.Join(dir, "console.log")
	jsonPath := filepath.Join(dir, "json.log")
	console, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{consolePath}})
	if err != nil {
		t.Fatalf("New console: %v", err)
	}
	structured, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{jsonPath}})
	if err != nil {
		t.Fatalf("New json: %v", err)
	}
	attrs := logging.Args(
		logging.Seconds("duration", 12.3456789),
		logging.Span("window", 0.1+0.2, 4.0004),
		logging.Chunk(3),
		logging.Decision("midpoint_cut"),
	)
	console.Info("merged", attrs...)
	structured.Info("merged", attrs...)

	line := string(mustRead(t, consolePath))
	for _, fragment := range []string{"chunk #3", "duration=12.346", "window.start=0.3", "window.end=4", "decision=midpoint_cut"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(mustRead(t, jsonPath)), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["duration"] != 12.346 {
		t.Fatalf("expected rounded duration, got %v", entry["duration"])
	}
	window, ok := entry["window"].(map[string]any)
	if !ok || window["start"] != 0.3 {
		t.Fatalf("expected rounded window group, got %v", entry["window"])
	}
	if entry[logging.FieldChunkIndex] != float64(3) {
		t.Fatalf("expected chunk index, got %v", entry[logging.FieldChunkIndex])
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return content
}
