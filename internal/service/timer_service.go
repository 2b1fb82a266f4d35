package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/notify"
	"github.com/andy/jobclock/internal/repository"
)

// TransitionRequest is everything needed to reconcile one timer change
type TransitionRequest struct {
	JobID      string
	OwnerID    string
	Transition domain.Transition

	// SessionID is set when a draft stopwatch commits its buffered time
	SessionID string
}

// TimerService is the only writer of job timer state
type TimerService interface {
	// Apply reconciles a transition atomically against the stored state
	Apply(ctx context.Context, req TransitionRequest) (*domain.Job, error)

	Start(ctx context.Context, ownerID, jobID string) (*domain.Job, error)
	Pause(ctx context.Context, ownerID, jobID string) (*domain.Job, error)
	SetStatus(ctx context.Context, ownerID, jobID string, status domain.JobStatus) (*domain.Job, error)
	AddManual(ctx context.Context, ownerID, jobID string, deltaMs int64) (*domain.Job, error)
	Reset(ctx context.Context, ownerID, jobID string) (*domain.Job, error)

	// CommitDraft adds a draft session's buffered seconds exactly once per session
	CommitDraft(ctx context.Context, ownerID, jobID, sessionID string, seconds int64) (*domain.Job, error)

	// Snapshot returns the job with its projected display time
	Snapshot(ctx context.Context, ownerID, jobID string) (domain.Projection, error)

	// Entries returns the audit log for a job
	Entries(ctx context.Context, ownerID, jobID string, limit int) ([]*domain.TimeEntry, error)
}

type timerService struct {
	jobRepo   repository.JobRepository
	entryRepo repository.TimeEntryRepository
	notifier  notify.Notifier
	log       *zap.Logger
	now       func() time.Time
}

// NewTimerService creates a new timer service
func NewTimerService(
	jobRepo repository.JobRepository,
	entryRepo repository.TimeEntryRepository,
	notifier notify.Notifier,
	log *zap.Logger,
) TimerService {
	return &timerService{
		jobRepo:   jobRepo,
		entryRepo: entryRepo,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

func (s *timerService) Apply(ctx context.Context, req TransitionRequest) (*domain.Job, error) {
	if req.SessionID != "" && req.Transition.Kind != domain.TransitionManualAdjust {
		return nil, domain.ErrInvalidTransition
	}

	job, err := s.jobRepo.UpdateTimer(ctx, req.JobID, func(job *domain.Job) (*repository.TimerMutation, error) {
		if !job.OwnedBy(req.OwnerID) {
			return nil, domain.ErrUnauthorized
		}

		// Take the instant inside the transaction so it is ordered with the read
		now := s.now()
		next, err := domain.Reconcile(job.Timer, req.Transition, now)
		if err != nil {
			return nil, err
		}

		mutation := &repository.TimerMutation{
			State:   next,
			Entries: domain.EntriesFor(job.ID, job.Timer, next, req.Transition, req.SessionID, now),
		}
		if req.SessionID != "" {
			mutation.DraftSessionID = req.SessionID
			mutation.DraftSeconds = req.Transition.DeltaMs / 1000
		}
		return mutation, nil
	})
	if err != nil {
		s.log.Warn("timer transition failed",
			zap.String("job_id", req.JobID),
			zap.Stringer("transition", req.Transition),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Debug("timer transition committed",
		zap.String("job_id", job.ID),
		zap.Stringer("transition", req.Transition),
		zap.Int64("accumulated_ms", job.Timer.AccumulatedMs),
		zap.Bool("running", job.Timer.IsRunning()),
		zap.Int64("version", job.Version),
	)

	// Other clients still converge through polling if this fails
	if err := s.notifier.Publish(ctx, job); err != nil {
		s.log.Warn("failed to publish timer change", zap.String("job_id", job.ID), zap.Error(err))
	}

	return job, nil
}

func (s *timerService) apply(ctx context.Context, ownerID, jobID string, tr domain.Transition) (*domain.Job, error) {
	return s.Apply(ctx, TransitionRequest{JobID: jobID, OwnerID: ownerID, Transition: tr})
}

func (s *timerService) Start(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	return s.apply(ctx, ownerID, jobID, domain.Start())
}

func (s *timerService) Pause(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	return s.apply(ctx, ownerID, jobID, domain.PauseOrStop())
}

func (s *timerService) SetStatus(ctx context.Context, ownerID, jobID string, status domain.JobStatus) (*domain.Job, error) {
	return s.apply(ctx, ownerID, jobID, domain.SetStatus(status))
}

func (s *timerService) AddManual(ctx context.Context, ownerID, jobID string, deltaMs int64) (*domain.Job, error) {
	return s.apply(ctx, ownerID, jobID, domain.ManualAdjust(deltaMs))
}

func (s *timerService) Reset(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	return s.apply(ctx, ownerID, jobID, domain.ResetTotal())
}

func (s *timerService) CommitDraft(ctx context.Context, ownerID, jobID, sessionID string, seconds int64) (*domain.Job, error) {
	if sessionID == "" {
		return nil, errors.New("draft session id is required")
	}
	if seconds <= 0 {
		return nil, domain.ErrInvalidDuration
	}
	ms, err := domain.ScaleMs(seconds, time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %d seconds is too long", domain.ErrInvalidDuration, seconds)
	}
	return s.Apply(ctx, TransitionRequest{
		JobID:      jobID,
		OwnerID:    ownerID,
		Transition: domain.ManualAdjust(ms),
		SessionID:  sessionID,
	})
}

func (s *timerService) Snapshot(ctx context.Context, ownerID, jobID string) (domain.Projection, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return domain.Projection{}, err
	}
	if !job.OwnedBy(ownerID) {
		return domain.Projection{}, domain.ErrUnauthorized
	}
	return domain.NewProjection(job, s.now()), nil
}

func (s *timerService) Entries(ctx context.Context, ownerID, jobID string, limit int) ([]*domain.TimeEntry, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(ownerID) {
		return nil, domain.ErrUnauthorized
	}
	return s.entryRepo.ListByJob(ctx, jobID, limit)
}
