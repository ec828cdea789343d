// Package chunker splits an audio timeline into fixed-length, overlapping
// chunks measured in samples.
package chunker

import (
	"errors"
	"fmt"
	"math"

	"stitch/internal/transcript"
)

var (
	ErrInvalidChunkLength = errors.New("chunk length must be positive")
	ErrInvalidOverlap     = errors.New("overlap must be non-negative and shorter than the chunk length")
	ErrInvalidDuration    = errors.New("audio duration must be non-negative")
	ErrInvalidSampleRate  = errors.New("sample rate must be positive")
)

// Options configures chunk planning.
type Options struct {
	ChunkSeconds   float64
	OverlapSeconds float64
}

// Chunker produces chunk plans for a fixed chunk length and overlap.
type Chunker struct {
	opts Options
}

// New validates options and returns a Chunker.
func New(opts Options) (*Chunker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{opts: opts}, nil
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if !(o.ChunkSeconds > 0) || math.IsInf(o.ChunkSeconds, 0) {
		return ErrInvalidChunkLength
	}
	if o.OverlapSeconds < 0 || o.OverlapSeconds >= o.ChunkSeconds || math.IsNaN(o.OverlapSeconds) {
		return ErrInvalidOverlap
	}
	return nil
}

// Options returns the configured options.
func (c *Chunker) Options() Options {
	return c.opts
}

// Plan tiles [0, durationSeconds] with chunks of ChunkSeconds that overlap by
// OverlapSeconds. The final chunk is clipped to the audio end. A zero duration
// yields an empty plan.
func (c *Chunker) Plan(durationSeconds float64, sampleRate int) ([]transcript.Chunk, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if durationSeconds < 0 || math.IsNaN(durationSeconds) {
		return nil, ErrInvalidDuration
	}
	total := int64(math.Round(durationSeconds * float64(sampleRate)))
	if total == 0 {
		return nil, nil
	}
	length := int64(math.Round(c.opts.ChunkSeconds * float64(sampleRate)))
	overlap := int64(math.Round(c.opts.OverlapSeconds * float64(sampleRate)))
	step := length - overlap
	if length <= 0 || step <= 0 {
		return nil, fmt.Errorf("%w: %d samples per chunk, %d overlap", ErrInvalidOverlap, length, overlap)
	}
	overlapSeconds := float64(overlap) / float64(sampleRate)

	chunks := make([]transcript.Chunk, 0, int(total/step)+1)
	for start := int64(0); ; start += step {
		end := start + length
		last := end >= total
		if last {
			end = total
		}
		chunk := transcript.Chunk{
			Index:       len(chunks),
			StartSample: start,
			EndSample:   end,
			SampleRate:  sampleRate,
		}
		if !last {
			chunk.OverlapWithNext = overlapSeconds
		}
		chunks = append(chunks, chunk)
		if last {
			break
		}
	}
	return chunks, nil
}

// Window returns the absolute overlap shared by two consecutive chunks.
func Window(prev, next transcript.Chunk) (start, end float64) {
	return next.Start(), prev.End()
}
