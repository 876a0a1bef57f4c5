package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	categories, err := s.store.ListCategories(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	RespondWithJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := s.store.CreateCategory(user.ID, payload.Name)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusCreated, category)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := s.store.RenameCategory(user.ID, id, payload.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := s.store.DeleteCategory(user.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
