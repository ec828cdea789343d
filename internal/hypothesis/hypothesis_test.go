package hypothesis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stitch/internal/transcript"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyp.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFileAndReplay(t *testing.T) {
	path := writeFile(t, `{
		"language": "en",
		"duration": 12.5,
		"sample_rate": 16000,
		"chunk_seconds": 10,
		"overlap_seconds": 2,
		"chunks": [
			{"index": 0, "tokens": [{"text": "hello", "start": 0.1, "end": 0.4, "confidence": 0.9}]},
			{"index": 1, "tokens": []}
		]
	}`)
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Duration != 12.5 || f.ChunkSeconds != 10 || len(f.Chunks) != 2 {
		t.Fatalf("unexpected file %+v", f)
	}

	src := NewFileSource(f)
	if src.Name() != "json" {
		t.Fatalf("name = %q", src.Name())
	}
	h, err := src.Transcribe(context.Background(), Request{Chunk: transcript.Chunk{Index: 0}})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if h.ChunkIndex != 0 || len(h.Tokens) != 1 || h.Tokens[0].Confidence != 0.9 {
		t.Fatalf("unexpected hypothesis %+v", h)
	}
	missing, err := src.Transcribe(context.Background(), Request{Chunk: transcript.Chunk{Index: 7}})
	if err != nil {
		t.Fatalf("Transcribe missing: %v", err)
	}
	if missing.ChunkIndex != 7 || len(missing.Tokens) != 0 {
		t.Fatalf("expected silence for missing chunk, got %+v", missing)
	}
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"sample rate": `{"duration": 1, "sample_rate": 0, "chunks": []}`,
		"duplicate":   `{"duration": 1, "sample_rate": 8000, "chunks": [{"index": 0}, {"index": 0}]}`,
		"negative":    `{"duration": 1, "sample_rate": 8000, "chunks": [{"index": -1}]}`,
		"parse":       `{"duration": "long"}`,
	}
	for name, content := range cases {
		if _, err := LoadFile(writeFile(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "read hypothesis file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFileSourceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewFileSource(&File{SampleRate: 16000})
	if _, err := src.Transcribe(ctx, Request{}); err == nil {
		t.Fatal("expected context error")
	}
}
