package logging

import (
	"context"
	"log/slog"

	"stitch/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldChunkIndex is the standardized structured logging key for audio chunk indices.
	FieldChunkIndex = "chunk_index"
	// FieldSourceFile is the standardized structured logging key for the audio being processed.
	FieldSourceFile = "source_file"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecision names the path a merge or cleanup heuristic took.
	FieldDecision = "decision"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if idx, ok := services.ChunkIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldChunkIndex, idx))
	}
	if path, ok := services.SourceFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSourceFile, path))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
