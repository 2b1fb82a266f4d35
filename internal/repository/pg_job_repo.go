package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andy/jobclock/internal/domain"
)

const pgUniqueViolation = "23505"

// PgJobRepo is a Postgres implementation of JobRepository and TimeEntryRepository
type PgJobRepo struct {
	pool *pgxpool.Pool
}

// NewPgJobRepo creates a new PgJobRepo
func NewPgJobRepo(pool *pgxpool.Pool) *PgJobRepo {
	return &PgJobRepo{pool: pool}
}

func scanPgJob(row pgx.Row) (*domain.Job, error) {
	job := &domain.Job{}
	var status string
	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Name,
		&job.Notes,
		&job.Timer.AccumulatedMs,
		&job.Timer.RunningSince,
		&status,
		&job.Version,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Timer.Status = domain.JobStatus(status)
	return job, nil
}

// Create inserts a new job
func (r *PgJobRepo) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.OwnerID, job.Name, job.Notes,
		job.Timer.AccumulatedMs, job.Timer.RunningSince, string(job.Timer.Status),
		job.Version, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID, or domain.ErrNotFound
func (r *PgJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanPgJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// List returns the owner's jobs, most recently updated first
func (r *PgJobRepo) List(ctx context.Context, ownerID string, status *domain.JobStatus) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE owner_id = $1`
	args := []any{ownerID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY updated_at DESC, name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Delete removes a job; entries and draft commits cascade
func (r *PgJobRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM jobs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTimer locks the job row for the duration of fn, so concurrent
// transitions on the same job queue up behind each other.
func (r *PgJobRepo) UpdateTimer(ctx context.Context, id string, fn TimerUpdateFunc) (*domain.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	job, err := scanPgJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock job: %w", err)
	}

	mutation, err := fn(job)
	if err != nil {
		return nil, err
	}
	if err := mutation.State.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timer state: %w", err)
	}

	now := time.Now().UTC()

	if mutation.DraftSessionID != "" {
		_, err := tx.Exec(ctx,
			"INSERT INTO draft_commits (session_id, job_id, seconds, committed_at) VALUES ($1, $2, $3, $4)",
			mutation.DraftSessionID, job.ID, mutation.DraftSeconds, now,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return nil, domain.ErrAlreadySaved
			}
			return nil, fmt.Errorf("failed to record draft session: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE jobs
		SET accumulated_ms = $1, running_since = $2, status = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`,
		mutation.State.AccumulatedMs,
		mutation.State.RunningSince,
		string(mutation.State.Status),
		now,
		job.ID,
		job.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update timer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrConflict
	}

	batch := &pgx.Batch{}
	for _, entry := range mutation.Entries {
		var sessionID *string
		if entry.SessionID != "" {
			s := entry.SessionID
			sessionID = &s
		}
		batch.Queue(`
			INSERT INTO time_entries (job_id, kind, start_time, end_time, duration_ms, session_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, entry.JobID, string(entry.Kind), entry.StartTime, entry.EndTime, entry.DurationMs, sessionID, entry.CreatedAt)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to create time entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	job.Timer = mutation.State
	job.Version++
	job.UpdatedAt = now
	return job, nil
}

// ListByJob returns the newest entries for a job first
func (r *PgJobRepo) ListByJob(ctx context.Context, jobID string, limit int) ([]*domain.TimeEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, kind, start_time, end_time, duration_ms, COALESCE(session_id, ''), created_at
		FROM time_entries
		WHERE job_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry := &domain.TimeEntry{}
		var kind string
		if err := rows.Scan(&entry.ID, &entry.JobID, &kind, &entry.StartTime, &entry.EndTime, &entry.DurationMs, &entry.SessionID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entry.Kind = domain.EntryKind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
