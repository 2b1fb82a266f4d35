package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/repository"
)

// JobService manages job records. Identity is established by the caller;
// every method checks that ownerID owns the job it touches.
type JobService interface {
	Create(ctx context.Context, ownerID, name, notes string, status domain.JobStatus) (*domain.Job, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Job, error)
	List(ctx context.Context, ownerID string, status *domain.JobStatus) ([]*domain.Job, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type jobService struct {
	jobRepo repository.JobRepository
	log     *zap.Logger
}

// NewJobService creates a new job service
func NewJobService(jobRepo repository.JobRepository, log *zap.Logger) JobService {
	return &jobService{jobRepo: jobRepo, log: log}
}

func (s *jobService) Create(ctx context.Context, ownerID, name, notes string, status domain.JobStatus) (*domain.Job, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	job := domain.NewJob(ownerID, name, status)
	job.Notes = notes
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info("job created", zap.String("job_id", job.ID), zap.String("owner", ownerID))
	return job, nil
}

func (s *jobService) Get(ctx context.Context, ownerID, id string) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(ownerID) {
		return nil, domain.ErrUnauthorized
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, ownerID string, status *domain.JobStatus) ([]*domain.Job, error) {
	if status != nil && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.jobRepo.List(ctx, ownerID, status)
}

func (s *jobService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	s.log.Info("job deleted", zap.String("job_id", id), zap.String("owner", ownerID))
	return nil
}
