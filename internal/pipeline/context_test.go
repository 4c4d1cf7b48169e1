package pipeline_test

import (
	"context"
	"testing"

	"yoloprep/internal/pipeline"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = pipeline.WithRunID(ctx, "run-1")
	ctx = pipeline.WithStage(ctx, "index")
	ctx = pipeline.WithSplit(ctx, "val")

	if id, ok := pipeline.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := pipeline.StageFromContext(ctx); !ok || stage != "index" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if split, ok := pipeline.SplitFromContext(ctx); !ok || split != "val" {
		t.Fatalf("unexpected split: %v %v", split, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = pipeline.WithStage(ctx, "")
	ctx = pipeline.WithRunID(ctx, "")
	if _, ok := pipeline.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := pipeline.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
