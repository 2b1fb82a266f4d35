package draft

import (
	"testing"
	"time"

	"github.com/andy/jobclock/internal/domain"
)

func TestStore_LoadMissingIsIdle(t *testing.T) {
	store := NewStore(t.TempDir())
	d, err := store.Load("job-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.State() != domain.DraftStateIdle || d.JobID != "job-1" {
		t.Fatalf("expected idle draft, got %+v", d)
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := NewStore(t.TempDir())
	started := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	d := &domain.DraftSession{
		JobID:           "job-1",
		SessionID:       "s1",
		BufferedSeconds: 12,
		Running:         true,
		StartedAtLocal:  &started,
		BaseAtStart:     12,
	}
	if err := store.Save(d); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load("job-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SessionID != "s1" || !loaded.Running || !loaded.StartedAtLocal.Equal(started) {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	n, err := store.Clear()
	if err != nil || n != 1 {
		t.Fatalf("expected 1 snapshot cleared, got %d (%v)", n, err)
	}
}

func TestStore_SharedDirectoryLastSaveWins(t *testing.T) {
	dir := t.TempDir()
	first, second := NewStore(dir), NewStore(dir)

	if err := first.Save(&domain.DraftSession{JobID: "job-1", SessionID: "s1", BufferedSeconds: 5, SaveAttempted: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	seen, err := second.Load("job-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if seen.BufferedSeconds != 5 || !seen.SaveAttempted {
		t.Fatalf("second store must see the first store's snapshot, got %+v", seen)
	}

	// Both read the same snapshot; nothing locks across stores
	a, _ := first.Load("job-1")
	b, _ := second.Load("job-1")
	a.BufferedSeconds = 7
	b.BufferedSeconds = 9
	if err := first.Save(a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := second.Save(b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, _ := first.Load("job-1")
	if got.BufferedSeconds != 9 {
		t.Fatalf("expected the later save to win, got %d", got.BufferedSeconds)
	}
}
