package whisperx

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"stitch/internal/hypothesis"
	"stitch/internal/services"
	"stitch/internal/transcript"
)

func ptr(v float64) *float64 { return &v }

func TestTokensInterpolatesUntimedWords(t *testing.T) {
	segments := []Segment{{
		Start: 1.0,
		End:   4.0,
		Words: []Word{
			{Word: "It", Start: ptr(1.0), End: ptr(1.2), Score: ptr(0.8)},
			{Word: "costs"},
			{Word: "$5"},
			{Word: "today", Start: ptr(2.2), End: ptr(2.6)},
			{Word: "2024"},
		},
	}}
	got := Tokens(segments)
	if len(got) != 5 {
		t.Fatalf("expected 5 tokens, got %+v", got)
	}
	if got[0].Confidence != 0.8 {
		t.Fatalf("confidence not carried: %+v", got[0])
	}
	want := [][2]float64{{1.0, 1.2}, {1.2, 1.7}, {1.7, 2.2}, {2.2, 2.6}, {2.6, 4.0}}
	for i, w := range want {
		if math.Abs(got[i].Start-w[0]) > 1e-9 || math.Abs(got[i].End-w[1]) > 1e-9 {
			t.Fatalf("token %d = [%v, %v], want %v", i, got[i].Start, got[i].End, w)
		}
	}
}

func TestTokensFromSegmentTextWhenWordsMissing(t *testing.T) {
	got := Tokens([]Segment{{Text: " one two ", Start: 0, End: 1}})
	if len(got) != 2 || got[1].Start != 0.5 || got[1].End != 1 {
		t.Fatalf("unexpected tokens %+v", got)
	}
}

func TestBuildArgs(t *testing.T) {
	svc := NewService(Config{VADMethod: VADMethodPyannote, HFToken: "hf"}, "", "")
	args := svc.buildArgs("/tmp/chunk.wav", "/tmp/out", "English")
	joined := strings.Join(args, " ")
	for _, want := range []string{"whisperx /tmp/chunk.wav", "--model " + DefaultModel, "--output_format json", "--vad_method pyannote", "--hf_token hf", "--language en", "--device cpu"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
	cuda := NewService(Config{CUDAEnabled: true, Model: "small"}, "", "")
	joined = strings.Join(cuda.buildArgs("a.wav", "out", ""), " ")
	if !strings.Contains(joined, "--device cuda") || !strings.Contains(joined, "--model small") || strings.Contains(joined, "--language") {
		t.Fatalf("unexpected cuda args: %s", joined)
	}
	if !strings.Contains(joined, "--batch_size 4 --beam_size 10 --best_of 10") {
		t.Fatalf("expected default decoding sizes: %s", joined)
	}
	tuned := NewService(Config{BatchSize: 16, BeamSize: 5, VADMethod: VADMethodPyannote}, "", "")
	joined = strings.Join(tuned.buildArgs("a.wav", "out", ""), " ")
	if !strings.Contains(joined, "--batch_size 16 --beam_size 5 --best_of 5") || strings.Contains(joined, "--hf_token") {
		t.Fatalf("unexpected tuned args: %s", joined)
	}
}

func TestTranscribeRunsToolsAndParsesOutput(t *testing.T) {
	workDir := t.TempDir()
	svc := NewService(Config{}, "ffmpeg-test", "uvx-test")
	var calls []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		calls = append(calls, name)
		if name != "uvx-test" {
			return nil
		}
		outDir := args[slices.Index(args, "--output_dir")+1]
		payload := `{"segments":[{"text":"hi there","start":0.5,"end":1.5,"words":[{"word":"hi","start":0.5,"end":0.8,"score":0.9},{"word":"there","start":0.9,"end":1.4}]}]}`
		return os.WriteFile(filepath.Join(outDir, "chunk.json"), []byte(payload), 0o644)
	})

	chunk := transcript.Chunk{Index: 3, StartSample: 16000, EndSample: 48000, SampleRate: 16000}
	h, err := svc.Transcribe(context.Background(), hypothesis.Request{AudioPath: "/media/in.wav", Chunk: chunk, WorkDir: workDir})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if strings.Join(calls, ",") != "ffmpeg-test,uvx-test" {
		t.Fatalf("unexpected calls %v", calls)
	}
	if h.ChunkIndex != 3 || len(h.Tokens) != 2 || h.Tokens[1].Text != "there" {
		t.Fatalf("unexpected hypothesis %+v", h)
	}
	if _, err := os.Stat(filepath.Join(workDir, "chunk_00003")); err != nil {
		t.Fatalf("expected chunk dir: %v", err)
	}
}

func TestTranscribeWrapsToolFailure(t *testing.T) {
	svc := NewService(Config{}, "", "")
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("boom")
	})
	chunk := transcript.Chunk{EndSample: 16000, SampleRate: 16000}
	_, err := svc.Transcribe(context.Background(), hypothesis.Request{AudioPath: "in.wav", Chunk: chunk, WorkDir: t.TempDir()})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	_, err = svc.Transcribe(context.Background(), hypothesis.Request{Chunk: chunk})
	if !errors.Is(err, hypothesis.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}
