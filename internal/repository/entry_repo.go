package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/jobclock/internal/db"
	"github.com/andy/jobclock/internal/domain"
)

// EntryRepo is a SQLite implementation of TimeEntryRepository
type EntryRepo struct {
	db *db.DB
}

// NewEntryRepo creates a new EntryRepo
func NewEntryRepo(database *db.DB) *EntryRepo {
	return &EntryRepo{db: database}
}

// insertEntry appends an audit row inside the timer transaction
func insertEntry(ctx context.Context, tx *sql.Tx, entry *domain.TimeEntry) error {
	var sessionID interface{}
	if entry.SessionID != "" {
		sessionID = entry.SessionID
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO time_entries (job_id, kind, start_time, end_time, duration_ms, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.JobID,
		string(entry.Kind),
		nullMillis(entry.StartTime),
		nullMillis(entry.EndTime),
		entry.DurationMs,
		sessionID,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time entry ID: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByJob returns the newest entries for a job first
func (r *EntryRepo) ListByJob(ctx context.Context, jobID string, limit int) ([]*domain.TimeEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, kind, start_time, end_time, duration_ms, session_id, created_at
		FROM time_entries
		WHERE job_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry := &domain.TimeEntry{}
		var kind string
		var startTime, endTime sql.NullInt64
		var sessionID sql.NullString
		var createdAt int64

		if err := rows.Scan(&entry.ID, &entry.JobID, &kind, &startTime, &endTime, &entry.DurationMs, &sessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}

		entry.Kind = domain.EntryKind(kind)
		entry.StartTime = fromNullMillis(startTime)
		entry.EndTime = fromNullMillis(endTime)
		entry.SessionID = sessionID.String
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
