// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/suiren/x-bookmarker/internal/core"
	"github.com/suiren/x-bookmarker/internal/store"
	syncer "github.com/suiren/x-bookmarker/internal/sync"
)

// Server holds the dependencies for our API.
type Server struct {
	app    *core.App
	db     *sql.DB
	store  *store.Store
	runner *syncer.Runner
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:    app,
		db:     app.DB(),
		store:  store.New(app.DB()),
		runner: syncer.NewRunner(app.DB(), app.WsHub(), app.Config().Sync.PageSize),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics

	// Public API routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		// Long-lived streams live outside this group, so the request
		// timeout only bounds ordinary API calls.
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Bookmark Routes
			r.Get("/bookmarks", s.handleListBookmarks)
			r.Post("/bookmarks", s.handleCreateBookmark)
			r.Get("/bookmarks/{bookmarkID}", s.handleGetBookmark)
			r.Put("/bookmarks/{bookmarkID}", s.handleUpdateBookmark)
			r.Delete("/bookmarks/{bookmarkID}", s.handleDeleteBookmark)

			// Category Routes
			r.Get("/categories", s.handleListCategories)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{categoryID}", s.handleRenameCategory)
			r.Delete("/categories/{categoryID}", s.handleDeleteCategory)

			// Sync Routes
			r.Get("/sources", s.handleListSources)
			r.Post("/sync", s.handleStartSync)
			r.Get("/sync/jobs", s.handleListSyncJobs)
			r.Get("/sync/jobs/{jobID}", s.handleGetSyncJob)
			r.Post("/sync/jobs/{jobID}/cancel", s.handleCancelSyncJob)

			// Backup Routes
			r.Get("/backup/export", s.handleBackupExport)

			// Admin Job Triggers and User Management
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/jobs/run", s.handleRunAdminJob)

				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users", s.handleAdminCreateUser)
				r.Put("/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/users/{userID}", s.handleAdminDeleteUser)
			})
		})
	})

	// Event-stream routes. These authenticate inside the handler because
	// their pre-stream error bodies carry machine-readable codes, and they
	// must not run under the request timeout.
	r.Get("/api/events/{jobID}", s.handleJobEvents)
	r.Get("/api/events/{jobID}/updates", s.handleJobEventsGranular)

	// WebSocket route
	r.Get("/ws/admin/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
