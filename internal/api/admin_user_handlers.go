package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/suiren/x-bookmarker/internal/auth"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	RespondWithJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if payload.Role != "admin" {
		payload.Role = "user"
	}

	passwordHash, err := auth.HashPassword(payload.Password)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := s.store.CreateUser(payload.Username, passwordHash, payload.Role)
	if err != nil {
		RespondWithError(w, http.StatusConflict, "Username already taken")
		return
	}
	RespondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if payload.Username != "" {
		if err := s.store.UpdateUser(id, payload.Username, payload.Role); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}
	if payload.Password != "" {
		passwordHash, err := auth.HashPassword(payload.Password)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		if err := s.store.UpdateUserPassword(id, passwordHash); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to update password")
			return
		}
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	requester := getUserFromContext(r)
	if requester != nil && requester.ID == id {
		RespondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := s.store.DeleteUser(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
