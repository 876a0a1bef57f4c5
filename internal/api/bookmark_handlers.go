package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/suiren/x-bookmarker/internal/metadata"
	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/store"
	"github.com/suiren/x-bookmarker/internal/util"
)

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)

	filter := store.BookmarkFilter{
		Query:      r.URL.Query().Get("q"),
		CategoryID: categoryID,
		SiteKey:    r.URL.Query().Get("site"),
		Page:       page,
		PerPage:    perPage,
	}

	bookmarks, total, err := s.store.ListBookmarks(user.ID, filter)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list bookmarks")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookmarks": bookmarks,
		"total":     total,
	})
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		CategoryID  *int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	normalized, err := util.NormalizeURL(payload.URL)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookmark := &models.Bookmark{
		UserID:      user.ID,
		URL:         normalized,
		Title:       payload.Title,
		Description: payload.Description,
		SiteKey:     util.SiteKey(normalized),
		CategoryID:  payload.CategoryID,
	}

	// Fill in missing metadata from the page itself. Best effort: an
	// unreachable page still gets bookmarked.
	if bookmark.Title == "" {
		fetcher := metadata.NewFetcher(s.app.Config().Data.Path)
		if meta, err := fetcher.FetchPageMeta(normalized); err == nil {
			bookmark.Title = meta.Title
			if bookmark.Description == "" {
				bookmark.Description = meta.Description
			}
		}
		if bookmark.Title == "" {
			bookmark.Title = normalized
		}
	}

	created, err := s.store.CreateBookmark(bookmark)
	if err != nil {
		RespondWithError(w, http.StatusConflict, "Bookmark already exists")
		return
	}
	RespondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}

	bookmark, err := s.store.GetBookmark(user.ID, id)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, bookmark)
}

func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}

	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CategoryID  *int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	bookmark := &models.Bookmark{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
	}
	if err := s.store.UpdateBookmark(user.ID, bookmark); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondWithError(w, http.StatusNotFound, "Bookmark not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to update bookmark")
		return
	}

	updated, err := s.store.GetBookmark(user.ID, id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load updated bookmark")
		return
	}
	RespondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}

	if err := s.store.DeleteBookmark(user.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondWithError(w, http.StatusNotFound, "Bookmark not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete bookmark")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
