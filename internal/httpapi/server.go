// Package httpapi exposes jobs and their timers over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andy/jobclock/internal/service"
)

// UserHeader carries the caller identity set by the upstream identity proxy
const UserHeader = "X-User-ID"

type ctxKey int

const userKey ctxKey = iota

// Server exposes the job and timer services over HTTP. Every route except
// the health check needs the caller's id in the X-User-ID header.
type Server struct {
	Jobs   service.JobService
	Timers service.TimerService
	Log    *zap.Logger

	// PollInterval is advertised to clients so they know how often to resync
	PollInterval time.Duration

	now func() time.Time
}

// NewServer returns a Server that advertises pollInterval to clients
func NewServer(jobs service.JobService, timers service.TimerService, log *zap.Logger, pollInterval time.Duration) *Server {
	return &Server{
		Jobs:         jobs,
		Timers:       timers,
		Log:          log,
		PollInterval: pollInterval,
		now:          time.Now,
	}
}

// Router builds the chi route tree. Every request is logged, and /v1
// responses carry the poll interval hint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireUser)
		r.Use(s.pollHint)

		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleDeleteJob)
		r.Get("/jobs/{id}/entries", s.handleListEntries)

		r.Post("/jobs/{id}/timer", s.handleTimer)
		for _, kind := range []string{"start", "pause", "stop", "done", "reset"} {
			r.Post("/jobs/{id}/"+kind, s.handleShortcut(kind))
		}
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.Log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) pollHint(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.PollInterval > 0 {
			w.Header().Set("X-Poll-Interval", s.PollInterval.String())
		}
		next.ServeHTTP(w, r)
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(UserHeader)
		if user == "" {
			writeErr(w, http.StatusUnauthorized, errMissingIdentity)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func userFrom(r *http.Request) string {
	user, _ := r.Context().Value(userKey).(string)
	return user
}
