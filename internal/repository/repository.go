package repository

import (
	"context"

	"github.com/andy/jobclock/internal/domain"
)

// TimerMutation is what an UpdateTimer callback asks the repository to persist
type TimerMutation struct {
	State   domain.TimerState
	Entries []*domain.TimeEntry

	// DraftSessionID marks a committed draft session; a second commit of the
	// same session fails with domain.ErrAlreadySaved.
	DraftSessionID string
	DraftSeconds   int64
}

// TimerUpdateFunc computes a mutation from the current job row. Returning an
// error aborts the transaction without writing anything.
type TimerUpdateFunc func(job *domain.Job) (*TimerMutation, error)

// JobRepository manages jobs and their timer state
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error) // domain.ErrNotFound if missing
	List(ctx context.Context, ownerID string, status *domain.JobStatus) ([]*domain.Job, error)
	Delete(ctx context.Context, id string) error // cascades to entries and draft commits

	// UpdateTimer is an atomic read-modify-write of a job's timer state
	UpdateTimer(ctx context.Context, id string, fn TimerUpdateFunc) (*domain.Job, error)
}

// TimeEntryRepository reads the audit log written by UpdateTimer
type TimeEntryRepository interface {
	ListByJob(ctx context.Context, jobID string, limit int) ([]*domain.TimeEntry, error)
}
