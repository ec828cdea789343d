package merge

import (
	"fmt"
	"log/slog"

	"stitch/internal/chunker"
	"stitch/internal/logging"
	"stitch/internal/transcript"
)

// Boundary records the merge between two contributing chunks.
type Boundary struct {
	PrevChunk  int
	NextChunk  int
	Window     Window
	Matched    int
	Degenerate bool
	Fallback   bool
}

// Result is the merged word stream of a whole recording.
type Result struct {
	Words      []transcript.Word
	Boundaries []Boundary
	// SkippedChunks lists chunk indices whose hypothesis held no words.
	SkippedChunks []int
}

// Engine folds per-chunk hypotheses into one word stream with a fixed
// strategy.
type Engine struct {
	strategy Strategy
	merger   Merger
	logger   *slog.Logger
}

// New builds an engine for the strategy.
func New(strategy Strategy, logger *slog.Logger) (*Engine, error) {
	merger, err := strategy.Merger()
	if err != nil {
		return nil, err
	}
	return &Engine{
		strategy: strategy,
		merger:   merger,
		logger:   logging.NewComponentLogger(logger, "merge"),
	}, nil
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// MergeAll converts each hypothesis to absolute time and merges the streams
// in chunk order. Hypotheses may arrive in any order but each must reference a
// planned chunk exactly once. Chunks without words are skipped and the next
// contributing chunk is merged against the last one that contributed.
func (e *Engine) MergeAll(chunks []transcript.Chunk, hypotheses []transcript.RawHypothesis) (Result, error) {
	byIndex := make(map[int]transcript.RawHypothesis, len(hypotheses))
	for _, hyp := range hypotheses {
		if hyp.ChunkIndex < 0 || hyp.ChunkIndex >= len(chunks) {
			return Result{}, fmt.Errorf("hypothesis references unknown chunk %d", hyp.ChunkIndex)
		}
		if _, dup := byIndex[hyp.ChunkIndex]; dup {
			return Result{}, fmt.Errorf("duplicate hypothesis for chunk %d", hyp.ChunkIndex)
		}
		byIndex[hyp.ChunkIndex] = hyp
	}

	var result Result
	var prev *transcript.Chunk
	for i := range chunks {
		chunk := chunks[i]
		words := byIndex[chunk.Index].Absolute(chunk)
		if len(words) == 0 {
			result.SkippedChunks = append(result.SkippedChunks, chunk.Index)
			e.logger.Debug("chunk produced no words",
				logging.Chunk(chunk.Index),
				logging.String(logging.FieldEventType, "chunk_empty"),
			)
			continue
		}
		if prev == nil {
			result.Words = words
			prev = &chunks[i]
			continue
		}

		start, end := chunker.Window(*prev, chunk)
		window := Window{Start: start, End: end}
		outcome := e.merger.Merge(result.Words, words, window)
		result.Words = outcome.Words
		boundary := Boundary{
			PrevChunk:  prev.Index,
			NextChunk:  chunk.Index,
			Window:     window,
			Matched:    outcome.Matched,
			Degenerate: outcome.Degenerate,
			Fallback:   outcome.Fallback,
		}
		result.Boundaries = append(result.Boundaries, boundary)
		e.logBoundary(boundary)
		prev = &chunks[i]
	}
	return result, nil
}

func (e *Engine) logBoundary(b Boundary) {
	attrs := []logging.Attr{
		logging.Int("prev_chunk", b.PrevChunk),
		logging.Int("next_chunk", b.NextChunk),
		logging.Span("window", b.Window.Start, b.Window.End),
		logging.Int("matched", b.Matched),
		logging.String(logging.FieldEventType, "chunks_merged"),
	}
	switch {
	case b.Degenerate:
		attrs = append(attrs, logging.Decision("concatenated"))
		e.logger.Debug("overlap empty on one side, concatenated", logging.Args(attrs...)...)
	case b.Fallback:
		attrs = append(attrs, logging.Decision("midpoint_cut"))
		e.logger.Debug("no agreement in overlap, cut at window midpoint", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.Decision(string(e.strategy)))
		e.logger.Debug("chunks merged", logging.Args(attrs...)...)
	}
}
