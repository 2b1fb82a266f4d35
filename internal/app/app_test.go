package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andy/jobclock/internal/config"
	"github.com/andy/jobclock/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "jobclock.db")
	cfg.Database.Encrypt = false
	cfg.Draft.Dir = filepath.Join(dir, "drafts")
	cfg.User.ID = "tester"
	return cfg
}

func TestNewWithConfig_DraftCommitsAsConfiguredUser(t *testing.T) {
	ctx := context.Background()
	a, err := NewWithConfig(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	job, err := a.JobService.Create(ctx, a.UserID(), "Garage", "", domain.JobStatusPaused)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := a.Drafts.Start(job.ID)
	if err != nil {
		t.Fatalf("draft start: %v", err)
	}
	// Give the draft some time without sleeping
	d.BufferedSeconds = 42
	d.Running = false
	d.StartedAtLocal = nil
	if err := a.DraftStore.Save(d); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	if _, seconds, err := a.Drafts.Save(ctx, job.ID); err != nil || seconds != 42 {
		t.Fatalf("draft save: %d, %v", seconds, err)
	}

	p, err := a.TimerService.Snapshot(ctx, a.UserID(), job.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if p.DisplayMs != 42000 {
		t.Fatalf("expected 42s on the job, got %d", p.DisplayMs)
	}
}
