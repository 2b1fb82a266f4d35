// Package draft implements the local stopwatch that buffers time before it is
// committed to a job in one step.
package draft

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/andy/jobclock/internal/domain"
)

// Committer adds a draft session's seconds to a job exactly once
type Committer interface {
	CommitDraft(ctx context.Context, jobID, sessionID string, seconds int64) error
}

// SnapshotStore persists draft snapshots
type SnapshotStore interface {
	Load(jobID string) (*domain.DraftSession, error)
	Save(d *domain.DraftSession) error
}

// Timer drives draft sessions. Each operation re-reads the snapshot, so state
// changed by another process is picked up before anything is decided.
type Timer struct {
	store     SnapshotStore
	committer Committer
	now       func() time.Time
	newID     func() string
}

// NewTimer returns a Timer that keeps snapshots in store and sends saved
// sessions to committer
func NewTimer(store SnapshotStore, committer Committer) *Timer {
	return &Timer{
		store:     store,
		committer: committer,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Status rehydrates the draft and projects its seconds from the wall clock
func (t *Timer) Status(jobID string) (*domain.DraftSession, error) {
	d, err := t.store.Load(jobID)
	if err != nil {
		return nil, err
	}
	d.Tick(t.now())
	return d, nil
}

// Start begins a new session or resumes a paused one. It fails with
// domain.ErrDraftSaveUnresolved while an earlier save has no known outcome.
func (t *Timer) Start(jobID string) (*domain.DraftSession, error) {
	return t.mutate(jobID, func(d *domain.DraftSession, now time.Time) error {
		return d.Start(now, t.newID)
	})
}

// Pause freezes the draft's buffered seconds
func (t *Timer) Pause(jobID string) (*domain.DraftSession, error) {
	return t.mutate(jobID, func(d *domain.DraftSession, now time.Time) error {
		return d.Pause(now)
	})
}

// Discard drops the draft and its buffered seconds without committing
func (t *Timer) Discard(jobID string) (*domain.DraftSession, error) {
	return t.mutate(jobID, func(d *domain.DraftSession, now time.Time) error {
		d.Discard(now)
		return nil
	})
}

// Save pauses the draft and commits its seconds once. On failure the
// snapshot keeps its buffered seconds and stays uncommitted so the save can
// be retried.
//
// The snapshot is marked as mid-save before the commit is sent. If the
// outcome is lost the session stays blocked from resuming, and the next Save
// settles it: the server either takes the seconds or reports that it already
// has them.
func (t *Timer) Save(ctx context.Context, jobID string) (*domain.DraftSession, int64, error) {
	d, err := t.store.Load(jobID)
	if err != nil {
		return nil, 0, err
	}

	now := t.now()
	retrying := d.SaveAttempted
	seconds, err := d.PrepareSave(now)
	if err != nil {
		return d, 0, err
	}
	d.SaveAttempted = true
	if err := t.store.Save(d); err != nil {
		return d, 0, err
	}

	if err := t.committer.CommitDraft(ctx, jobID, d.SessionID, seconds); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadySaved):
			// The server already holds this session
			d.MarkSaved(t.now())
			if saveErr := t.store.Save(d); saveErr != nil {
				return d, 0, saveErr
			}
			if retrying {
				// Our earlier attempt landed and only its answer was lost
				return d, seconds, nil
			}
		case rejected(err):
			d.SaveAttempted = false
			if saveErr := t.store.Save(d); saveErr != nil {
				return d, 0, saveErr
			}
		}
		return d, 0, err
	}

	d.MarkSaved(t.now())
	if err := t.store.Save(d); err != nil {
		return d, seconds, err
	}
	return d, seconds, nil
}

// rejected reports errors that prove the commit was refused, as opposed to
// ones that leave its outcome unknown
func rejected(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidDuration,
		domain.ErrNotFound,
		domain.ErrUnauthorized,
		domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (t *Timer) mutate(jobID string, fn func(d *domain.DraftSession, now time.Time) error) (*domain.DraftSession, error) {
	d, err := t.store.Load(jobID)
	if err != nil {
		return nil, err
	}
	if err := fn(d, t.now()); err != nil {
		return d, err
	}
	if err := t.store.Save(d); err != nil {
		return nil, err
	}
	return d, nil
}
