package chunker_test

import (
	"errors"
	"testing"

	"stitch/internal/chunker"
)

func TestNewRejectsInvalidOptions(t *testing.T) {
	cases := []struct {
		opts chunker.Options
		want error
	}{
		{chunker.Options{ChunkSeconds: 0, OverlapSeconds: 0}, chunker.ErrInvalidChunkLength},
		{chunker.Options{ChunkSeconds: -1, OverlapSeconds: 0}, chunker.ErrInvalidChunkLength},
		{chunker.Options{ChunkSeconds: 10, OverlapSeconds: 10}, chunker.ErrInvalidOverlap},
		{chunker.Options{ChunkSeconds: 10, OverlapSeconds: -1}, chunker.ErrInvalidOverlap},
	}
	for _, tc := range cases {
		if _, err := chunker.New(tc.opts); !errors.Is(err, tc.want) {
			t.Fatalf("New(%+v) error = %v, want %v", tc.opts, err, tc.want)
		}
	}
}

func TestPlanTilesAudio(t *testing.T) {
	c, err := chunker.New(chunker.Options{ChunkSeconds: 40, OverlapSeconds: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks, err := c.Plan(100, 16000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	wantStarts := []float64{0, 30, 60}
	wantEnds := []float64{40, 70, 100}
	if len(chunks) != len(wantStarts) {
		t.Fatalf("expected %d chunks, got %d", len(wantStarts), len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.Start() != wantStarts[i] || chunk.End() != wantEnds[i] {
			t.Fatalf("chunk %d spans %v-%v", i, chunk.Start(), chunk.End())
		}
		if i > 0 {
			prev := chunks[i-1]
			if prev.EndSample-chunk.StartSample != 10*16000 {
				t.Fatalf("chunks %d/%d overlap %d samples", i-1, i, prev.EndSample-chunk.StartSample)
			}
		}
	}
	if chunks[0].OverlapWithNext != 10 || chunks[2].OverlapWithNext != 0 {
		t.Fatalf("unexpected overlap metadata: %v %v", chunks[0].OverlapWithNext, chunks[2].OverlapWithNext)
	}
	if chunks[0].StartSample != 0 || chunks[len(chunks)-1].EndSample != 100*16000 {
		t.Fatal("plan must cover the whole timeline")
	}
}

func TestPlanShortAudioSingleChunk(t *testing.T) {
	c, _ := chunker.New(chunker.Options{ChunkSeconds: 30, OverlapSeconds: 5})
	chunks, err := c.Plan(12.5, 16000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(chunks) != 1 || chunks[0].End() != 12.5 || chunks[0].OverlapWithNext != 0 {
		t.Fatalf("unexpected plan %+v", chunks)
	}
}

func TestPlanEmptyAudio(t *testing.T) {
	c, _ := chunker.New(chunker.Options{ChunkSeconds: 30, OverlapSeconds: 5})
	chunks, err := c.Plan(0, 16000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected empty plan, got %d chunks", len(chunks))
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	c, _ := chunker.New(chunker.Options{ChunkSeconds: 30, OverlapSeconds: 5})
	if _, err := c.Plan(-1, 16000); !errors.Is(err, chunker.ErrInvalidDuration) {
		t.Fatalf("expected duration error, got %v", err)
	}
	if _, err := c.Plan(10, 0); !errors.Is(err, chunker.ErrInvalidSampleRate) {
		t.Fatalf("expected sample rate error, got %v", err)
	}
	tiny, _ := chunker.New(chunker.Options{ChunkSeconds: 0.0001, OverlapSeconds: 0.00009})
	if _, err := tiny.Plan(1, 8000); !errors.Is(err, chunker.ErrInvalidOverlap) {
		t.Fatalf("expected step error, got %v", err)
	}
}

func TestPlanExactMultipleEndsOnBoundary(t *testing.T) {
	c, _ := chunker.New(chunker.Options{ChunkSeconds: 10, OverlapSeconds: 2})
	chunks, err := c.Plan(26, 100)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// starts 0, 8, 16; 16+10=26 reaches the end exactly
	if len(chunks) != 3 || chunks[2].End() != 26 {
		t.Fatalf("unexpected plan %+v", chunks)
	}
}

func TestWindow(t *testing.T) {
	c, _ := chunker.New(chunker.Options{ChunkSeconds: 40, OverlapSeconds: 10})
	chunks, _ := c.Plan(100, 16000)
	start, end := chunker.Window(chunks[0], chunks[1])
	if start != 30 || end != 40 {
		t.Fatalf("unexpected window %v-%v", start, end)
	}
}
