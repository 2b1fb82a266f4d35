package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/service"
)

type createJobRequest struct {
	Name   string `json:"name"`
	Notes  string `json:"notes"`
	Status string `json:"status"`
}

// timerRequest is the body of POST /v1/jobs/{id}/timer
type timerRequest struct {
	Type      string `json:"type"`
	Minutes   *int64 `json:"minutes,omitempty"`
	Seconds   *int64 `json:"seconds,omitempty"`
	Status    string `json:"status,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	status := domain.JobStatusActive
	if req.Status != "" {
		parsed, err := domain.ParseJobStatus(req.Status)
		if err != nil {
			s.fail(w, err)
			return
		}
		status = parsed
	}

	job, err := s.Jobs.Create(r.Context(), userFrom(r), req.Name, req.Notes, status)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var status *domain.JobStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := domain.ParseJobStatus(raw)
		if err != nil {
			s.fail(w, err)
			return
		}
		status = &parsed
	}

	jobs, err := s.Jobs.List(r.Context(), userFrom(r), status)
	if err != nil {
		s.fail(w, err)
		return
	}

	now := s.now()
	resp := make([]domain.Projection, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, domain.NewProjection(job, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	p, err := s.Timers.Snapshot(r.Context(), userFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.Jobs.Delete(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", raw))
			return
		}
		if value > 500 {
			value = 500
		}
		limit = value
	}

	entries, err := s.Timers.Entries(r.Context(), userFrom(r), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.TimeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	s.applyTimer(w, r, req)
}

// handleShortcut serves the single-verb routes like /start
func (s *Server) handleShortcut(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.applyTimer(w, r, timerRequest{Type: kind})
	}
}

func (s *Server) applyTimer(w http.ResponseWriter, r *http.Request, req timerRequest) {
	tr, err := domain.ParseTransition(req.Type, req.Minutes, req.Seconds, req.Status)
	if err != nil {
		s.fail(w, err)
		return
	}

	job, err := s.Timers.Apply(r.Context(), service.TransitionRequest{
		JobID:      chi.URLParam(r, "id"),
		OwnerID:    userFrom(r),
		Transition: tr,
		SessionID:  req.SessionID,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewProjection(job, s.now()))
}
