package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/andy/jobclock/internal/domain"
)

func TestJobService_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemJobRepo()
	svc := NewJobService(repo, zap.NewNop())

	job, err := svc.Create(ctx, "u1", "  Garage door  ", "north side", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Name != "Garage door" || job.Timer.Status != domain.JobStatusActive || job.Timer.IsRunning() {
		t.Fatalf("unexpected job %+v", job)
	}

	if _, err := svc.Get(ctx, "u2", job.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Delete(ctx, "u2", job.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on delete, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestJobService_CreateValidates(t *testing.T) {
	svc := NewJobService(newMemJobRepo(), zap.NewNop())

	if _, err := svc.Create(context.Background(), "u1", "   ", "", ""); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := svc.Create(context.Background(), "u1", "Porch", "", "archived"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
