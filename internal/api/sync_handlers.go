package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/sync/sources"
)

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sources.GetAll())
}

// handleStartSync enqueues a sync job for the current user and starts the
// runner. The job's live progress is then available on the event-stream
// endpoints.
func (s *Server) handleStartSync(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload struct {
		Source string `json:"source"`
	}
	// The body is optional; an empty or absent body means the configured
	// default source.
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	sourceID := payload.Source
	if sourceID == "" {
		sourceID = s.app.Config().Sync.Source
	}

	source, ok := sources.Get(sourceID)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "No sync source configured")
		return
	}

	active, err := s.store.HasActiveSyncJob(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to check sync state")
		return
	}
	if active {
		RespondWithError(w, http.StatusConflict, "A sync is already in progress")
		return
	}

	job, err := s.store.CreateSyncJob(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create sync job")
		return
	}

	// The runner outlives this request, so it gets its own context.
	go s.runner.Run(context.Background(), job, source)

	RespondWithJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListSyncJobs(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	jobs, err := s.store.ListSyncJobs(user.ID, 20)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list sync jobs")
		return
	}
	RespondWithJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetSyncJob(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	jobID := chi.URLParam(r, "jobID")

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			RespondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job.UserID != user.ID {
		RespondWithError(w, http.StatusForbidden, "Access denied")
		return
	}
	RespondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelSyncJob(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	jobID := chi.URLParam(r, "jobID")

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			RespondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job.UserID != user.ID {
		RespondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	cancelled, err := s.store.CancelSyncJob(user.ID, jobID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to cancel job")
		return
	}
	if !cancelled {
		RespondWithError(w, http.StatusConflict, "Job has already finished")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
