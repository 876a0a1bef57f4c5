// The SSE endpoints that stream sync-job progress to the browser. Validation
// happens in a fixed order (authentication, job id, existence, ownership) and
// each failure is reported as a coded JSON body before any stream is opened.
// Once the stream opens, everything else is the session's job.

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/sse"
)

// handleJobEvents opens a simple-mode stream: one untyped data record per
// tick, discriminated by the payload's "type" field.
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	s.serveJobEvents(w, r, sse.ModeSimple)
}

// handleJobEventsGranular opens a granular-mode stream with named events
// (progress, completed, failed, ...) for clients using addEventListener.
func (s *Server) handleJobEventsGranular(w http.ResponseWriter, r *http.Request) {
	s.serveJobEvents(w, r, sse.ModeGranular)
}

func (s *Server) serveJobEvents(w http.ResponseWriter, r *http.Request, mode sse.Mode) {
	user, err := s.userFromRequest(r)
	if err != nil {
		RespondWithCodedError(w, http.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED")
		return
	}

	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		RespondWithCodedError(w, http.StatusBadRequest, "Job ID is required", "JOB_ID_REQUIRED")
		return
	}

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			RespondWithCodedError(w, http.StatusNotFound, "Job not found", "JOB_NOT_FOUND")
			return
		}
		RespondWithCodedError(w, http.StatusInternalServerError, "Failed to get job", "INTERNAL_ERROR")
		return
	}

	// Ownership is validated once here; it holds for the stream's lifetime.
	if !sse.Authorize(user.ID, job) {
		RespondWithCodedError(w, http.StatusForbidden, "Access denied", "ACCESS_DENIED")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondWithCodedError(w, http.StatusInternalServerError, "Streaming unsupported", "INTERNAL_ERROR")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	cfg := s.app.Config()
	session := sse.NewSession(w, flusher, s.store, jobID, user.ID, sse.Options{
		Mode:              mode,
		PollInterval:      time.Duration(cfg.SSE.PollIntervalMs) * time.Millisecond,
		HeartbeatInterval: time.Duration(cfg.SSE.HeartbeatIntervalMs) * time.Millisecond,
	})

	// Serve blocks until the job finishes or the client disconnects;
	// returning from it is what closes the stream.
	session.Serve(r.Context())
}
