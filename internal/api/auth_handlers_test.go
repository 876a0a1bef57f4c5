package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/testutil"
)

func TestAuthHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	cookie := testutil.GetAuthCookie(t, server, "alice", "password123", "user")

	t.Run("login with wrong password", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
		req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("login with unknown user", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"username": "nobody", "password": "password123"})
		req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("me returns the session user", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		var user models.User
		if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
			t.Fatalf("invalid body: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("username = %q, want alice", user.Username)
		}
	})

	t.Run("me without session", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/users/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/users/logout", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("logout status = %d, want 200", rr.Code)
		}

		req, _ = http.NewRequest("GET", "/api/users/me", nil)
		req.AddCookie(cookie)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("me after logout status = %d, want 401", rr.Code)
		}
	})
}
