// Package hypothesis defines how per-chunk recognition results enter the
// pipeline. A Source turns one audio chunk into chunk-local timed tokens.
package hypothesis

import (
	"context"
	"errors"

	"stitch/internal/transcript"
)

// ErrNoAudio is returned when a request lacks an audio path for sources that
// need one.
var ErrNoAudio = errors.New("audio path required")

// Source produces the recognition hypothesis for one chunk.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Model identifies the recognition model; part of the cache key.
	Model() string
	Transcribe(ctx context.Context, req Request) (transcript.RawHypothesis, error)
}

// Request describes one chunk to transcribe.
type Request struct {
	AudioPath string
	// AudioStream is the ordinal of the audio stream to transcribe.
	AudioStream int
	Chunk       transcript.Chunk
	Language    string
	// WorkDir holds temporary chunk audio; sources create it on demand.
	WorkDir string
}
