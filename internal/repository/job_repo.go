package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/jobclock/internal/db"
	"github.com/andy/jobclock/internal/domain"
)

const jobColumns = `id, owner_id, name, notes, accumulated_ms, running_since, status, version, created_at, updated_at`

// JobRepo is a SQLite implementation of JobRepository
type JobRepo struct {
	db *db.DB
}

// NewJobRepo creates a new JobRepo
func NewJobRepo(database *db.DB) *JobRepo {
	return &JobRepo{db: database}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	job := &domain.Job{}
	var runningSince sql.NullInt64
	var status string
	var createdAt, updatedAt int64

	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Name,
		&job.Notes,
		&job.Timer.AccumulatedMs,
		&runningSince,
		&status,
		&job.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Timer.RunningSince = fromNullMillis(runningSince)
	job.Timer.Status = domain.JobStatus(status)
	job.CreatedAt = fromMillis(createdAt)
	job.UpdatedAt = fromMillis(updatedAt)
	return job, nil
}

// Create inserts a new job
func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		job.Name,
		job.Notes,
		job.Timer.AccumulatedMs,
		nullMillis(job.Timer.RunningSince),
		string(job.Timer.Status),
		job.Version,
		toMillis(job.CreatedAt),
		toMillis(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// List returns the owner's jobs, most recently updated first
func (r *JobRepo) List(ctx context.Context, ownerID string, status *domain.JobStatus) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE owner_id = ?`
	args := []interface{}{ownerID}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY updated_at DESC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Delete removes a job with its entries and draft commits
func (r *JobRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTimer runs fn against the stored job inside a transaction. The write
// is guarded by the version read in the same transaction, so a concurrent
// writer from another process yields domain.ErrConflict instead of a lost or
// doubled delta.
func (r *JobRepo) UpdateTimer(ctx context.Context, id string, fn TimerUpdateFunc) (*domain.Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	mutation, err := fn(job)
	if err != nil {
		return nil, err
	}
	if err := mutation.State.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timer state: %w", err)
	}

	if mutation.DraftSessionID != "" {
		if err := insertDraftCommit(ctx, tx, job.ID, mutation); err != nil {
			return nil, asConflict(err)
		}
	}

	now := time.Now().UTC()
	if err := casUpdate(ctx, tx, job, mutation.State, now); err != nil {
		return nil, asConflict(err)
	}

	for _, entry := range mutation.Entries {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, asConflict(fmt.Errorf("failed to commit transaction: %w", err))
	}

	job.Timer = mutation.State
	job.Version++
	job.UpdatedAt = fromMillis(toMillis(now))
	return job, nil
}

// casUpdate writes state only if the row still carries the version that was
// read as job
func casUpdate(ctx context.Context, tx *sql.Tx, job *domain.Job, state domain.TimerState, now time.Time) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET accumulated_ms = ?, running_since = ?, status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`,
		state.AccumulatedMs,
		nullMillis(state.RunningSince),
		string(state.Status),
		toMillis(now),
		job.ID,
		job.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update timer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}

// asConflict reports a write rejected by SQLite locking as domain.ErrConflict.
// In WAL mode a transaction whose read snapshot went stale fails its first
// write with BUSY_SNAPSHOT, which is the same lost race as a version mismatch.
func asConflict(err error) error {
	if db.IsBusy(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

func insertDraftCommit(ctx context.Context, tx *sql.Tx, jobID string, m *TimerMutation) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM draft_commits WHERE session_id = ?", m.DraftSessionID).Scan(&exists)
	if err == nil {
		return domain.ErrAlreadySaved
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check draft session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO draft_commits (session_id, job_id, seconds, committed_at) VALUES (?, ?, ?, ?)",
		m.DraftSessionID, jobID, m.DraftSeconds, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record draft session: %w", err)
	}
	return nil
}
