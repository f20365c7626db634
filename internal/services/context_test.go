package services_test

import (
	"context"
	"testing"

	"autobot/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithMeeting(ctx, "02-01-kickoff")
	ctx = services.WithStep(ctx, "notebook")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if slug, ok := services.MeetingFromContext(ctx); !ok || slug != "02-01-kickoff" {
		t.Fatalf("unexpected meeting: %v %v", slug, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "notebook" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
}

func TestStepBlankPreservesContext(t *testing.T) {
	ctx := services.WithStep(context.Background(), "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step value")
	}
}
