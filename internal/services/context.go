package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	stageKey      contextKey = "stage"
	chunkIndexKey contextKey = "chunk_index"
	sourceFileKey contextKey = "source_file"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithChunkIndex annotates context with the audio chunk being processed.
func WithChunkIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, chunkIndexKey, index)
}

// ChunkIndexFromContext extracts the chunk index if present.
func ChunkIndexFromContext(ctx context.Context) (int, bool) {
	switch val := ctx.Value(chunkIndexKey).(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithSourceFile annotates context with the audio file under transcription.
func WithSourceFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, sourceFileKey, path)
}

// SourceFileFromContext returns the source file if present.
func SourceFileFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sourceFileKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
