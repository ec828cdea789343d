package services_test

import (
	"context"
	"testing"

	"stitch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "merge")
	ctx = services.WithChunkIndex(ctx, 3)
	ctx = services.WithSourceFile(ctx, "/tmp/a.wav")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "merge" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if idx, ok := services.ChunkIndexFromContext(ctx); !ok || idx != 3 {
		t.Fatalf("unexpected chunk index: %v %v", idx, ok)
	}
	if path, ok := services.SourceFileFromContext(ctx); !ok || path != "/tmp/a.wav" {
		t.Fatalf("unexpected source file: %v %v", path, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ChunkIndexFromContext(ctx); ok {
		t.Fatal("expected no chunk index")
	}
}
