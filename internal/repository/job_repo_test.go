package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/andy/jobclock/internal/db"
	"github.com/andy/jobclock/internal/domain"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	return openAt(t, filepath.Join(t.TempDir(), "jobclock.db"))
}

func openAt(t *testing.T, path string) *db.DB {
	t.Helper()
	database, err := db.Open(path, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// openTwice opens the same file through two independent handles, the way two
// CLI processes would
func openTwice(t *testing.T) (*db.DB, *db.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobclock.db")
	return openAt(t, path), openAt(t, path)
}

func createJob(t *testing.T, repo *JobRepo, owner, name string) *domain.Job {
	t.Helper()
	job := domain.NewJob(owner, name, domain.JobStatusActive)
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create: %v", err)
	}
	return job
}

func reconcileWith(tr domain.Transition, now time.Time) TimerUpdateFunc {
	return func(job *domain.Job) (*TimerMutation, error) {
		next, err := domain.Reconcile(job.Timer, tr, now)
		if err != nil {
			return nil, err
		}
		return &TimerMutation{
			State:   next,
			Entries: domain.EntriesFor(job.ID, job.Timer, next, tr, "", now),
		}, nil
	}
}

func TestJobRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(openTestDB(t))
	job := createJob(t, repo, "u1", "Kitchen remodel")

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Kitchen remodel" || got.OwnerID != "u1" {
		t.Fatalf("unexpected job %+v", got)
	}
	if got.Timer.Status != domain.JobStatusActive || got.Timer.IsRunning() || got.Timer.AccumulatedMs != 0 {
		t.Fatalf("new job must have a stopped empty timer, got %+v", got.Timer)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobRepo_ListFiltersByOwnerAndStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(openTestDB(t))
	createJob(t, repo, "u1", "A")
	createJob(t, repo, "u2", "B")
	done := domain.NewJob("u1", "C", domain.JobStatusDone)
	if err := repo.Create(ctx, done); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := repo.List(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs for u1, got %d", len(all))
	}

	status := domain.JobStatusDone
	filtered, err := repo.List(ctx, "u1", &status)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "C" {
		t.Fatalf("expected only job C, got %+v", filtered)
	}
}

func TestJobRepo_UpdateTimerPersistsStateAndEntries(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewJobRepo(database)
	entries := NewEntryRepo(database)
	job := createJob(t, repo, "u1", "Fence")

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if _, err := repo.UpdateTimer(ctx, job.ID, reconcileWith(domain.Start(), start)); err != nil {
		t.Fatalf("start: %v", err)
	}

	stored, _ := repo.GetByID(ctx, job.ID)
	if stored.Timer.RunningSince == nil || !stored.Timer.RunningSince.Equal(start) {
		t.Fatalf("expected running since %v, got %v", start, stored.Timer.RunningSince)
	}

	updated, err := repo.UpdateTimer(ctx, job.ID, reconcileWith(domain.PauseOrStop(), start.Add(90*time.Second)))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if updated.Timer.AccumulatedMs != 90000 || updated.Timer.IsRunning() || updated.Version != 2 {
		t.Fatalf("unexpected state after pause %+v (version %d)", updated.Timer, updated.Version)
	}

	list, err := entries.ListByJob(ctx, job.ID, 10)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(list) != 1 || list[0].Kind != domain.EntryKindLive || list[0].DurationMs != 90000 {
		t.Fatalf("expected one live entry of 90s, got %+v", list)
	}
}

func TestJobRepo_UpdateTimerRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(openTestDB(t))
	job := createJob(t, repo, "u1", "Deck")

	_, err := repo.UpdateTimer(ctx, job.ID, reconcileWith(domain.ManualAdjust(0), time.Now()))
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, job.ID)
	if stored.Version != 0 || stored.Timer.AccumulatedMs != 0 {
		t.Fatalf("failed update must not write, got %+v version %d", stored.Timer, stored.Version)
	}

	if _, err := repo.UpdateTimer(ctx, "missing", reconcileWith(domain.Start(), time.Now())); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobRepo_DraftSessionCommittedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(openTestDB(t))
	job := createJob(t, repo, "u1", "Roof")

	commit := func(job *domain.Job) (*TimerMutation, error) {
		next, err := domain.Reconcile(job.Timer, domain.ManualAdjust(42000), time.Now())
		if err != nil {
			return nil, err
		}
		return &TimerMutation{State: next, DraftSessionID: "sess-1", DraftSeconds: 42}, nil
	}

	if _, err := repo.UpdateTimer(ctx, job.ID, commit); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := repo.UpdateTimer(ctx, job.ID, commit); !errors.Is(err, domain.ErrAlreadySaved) {
		t.Fatalf("expected ErrAlreadySaved, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, job.ID)
	if stored.Timer.AccumulatedMs != 42000 {
		t.Fatalf("expected a single 42s commit, got %d", stored.Timer.AccumulatedMs)
	}
}

func TestJobRepo_StaleVersionIsConflict(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewJobRepo(database)
	job := createJob(t, repo, "u1", "Gutters")

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	stale := *job
	stale.Version = 7
	next := domain.TimerState{AccumulatedMs: 1000, Status: domain.JobStatusPaused}
	if err := casUpdate(ctx, tx, &stale, next, time.Now()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	stored, _ := repo.GetByID(ctx, job.ID)
	if stored.Version != 0 || stored.Timer.AccumulatedMs != 0 {
		t.Fatalf("stale write must not land, got %+v version %d", stored.Timer, stored.Version)
	}
}

func TestJobRepo_WriterFromAnotherHandleWins(t *testing.T) {
	ctx := context.Background()
	first, second := openTwice(t)
	repoA, repoB := NewJobRepo(first), NewJobRepo(second)
	job := createJob(t, repoA, "u1", "Shed")

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if _, err := repoA.UpdateTimer(ctx, job.ID, reconcileWith(domain.Start(), start)); err != nil {
		t.Fatalf("start: %v", err)
	}

	stop := start.Add(time.Minute)
	pause := reconcileWith(domain.PauseOrStop(), stop)

	// A reads the running job, then B pauses it and commits before A writes
	_, err := repoA.UpdateTimer(ctx, job.ID, func(j *domain.Job) (*TimerMutation, error) {
		if _, err := repoB.UpdateTimer(ctx, job.ID, pause); err != nil {
			t.Errorf("second handle pause: %v", err)
		}
		return pause(j)
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for the stale writer, got %v", err)
	}

	assertCommittedOnce(t, repoA, first, job.ID, 60000)
}

func TestJobRepo_ConcurrentPauseAcrossHandles(t *testing.T) {
	ctx := context.Background()
	first, second := openTwice(t)
	repos := []*JobRepo{NewJobRepo(first), NewJobRepo(second)}
	job := createJob(t, repos[0], "u1", "Porch")

	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if _, err := repos[0].UpdateTimer(ctx, job.ID, reconcileWith(domain.Start(), start)); err != nil {
		t.Fatalf("start: %v", err)
	}

	stop := start.Add(90 * time.Second)
	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repos[i%2].UpdateTimer(ctx, job.ID, reconcileWith(domain.PauseOrStop(), stop))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
		default:
			t.Fatalf("writer %d: unexpected error %v", i, err)
		}
	}
	if succeeded == 0 {
		t.Fatalf("expected at least one pause to land")
	}

	assertCommittedOnce(t, repos[1], second, job.ID, 90000)
}

func assertCommittedOnce(t *testing.T, repo *JobRepo, database *db.DB, jobID string, wantMs int64) {
	t.Helper()
	ctx := context.Background()

	stored, err := repo.GetByID(ctx, jobID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Timer.IsRunning() || stored.Timer.AccumulatedMs != wantMs {
		t.Fatalf("expected a stopped timer at %dms, got %+v", wantMs, stored.Timer)
	}

	list, err := NewEntryRepo(database).ListByJob(ctx, jobID, 10)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(list) != 1 || list[0].DurationMs != wantMs {
		t.Fatalf("expected exactly one %dms entry, got %+v", wantMs, list)
	}
}

func TestJobRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewJobRepo(database)
	job := createJob(t, repo, "u1", "Shed")

	if _, err := repo.UpdateTimer(ctx, job.ID, reconcileWith(domain.ManualAdjust(1000), time.Now())); err != nil {
		t.Fatalf("manual: %v", err)
	}
	if err := repo.Delete(ctx, job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM time_entries").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected entries to be cascaded, got %d", n)
	}

	if err := repo.Delete(ctx, job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
