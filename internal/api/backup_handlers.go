package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/suiren/x-bookmarker/internal/backup"
)

func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookmarks, err := s.store.ListAllBookmarks(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load bookmarks")
		return
	}

	filename := fmt.Sprintf("bookmarks-%s.zip", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := backup.WriteArchive(w, user.Username, bookmarks); err != nil {
		// Headers are already out, nothing to do but log.
		log.Printf("backup export for %s failed: %v", user.Username, err)
	}
}
