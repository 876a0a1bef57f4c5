package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/suiren/x-bookmarker/internal/testutil"
)

func TestAdminHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	adminCookie := testutil.GetAuthCookie(t, server, "testadmin", "password", "admin")
	userCookie := testutil.GetAuthCookie(t, server, "testuser", "password", "user")

	t.Run("version is public", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/version", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		var body map[string]string
		json.Unmarshal(rr.Body.Bytes(), &body)
		if body["version"] != "test" {
			t.Errorf("version = %q, want test", body["version"])
		}
	})

	t.Run("jobs status requires admin", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/jobs/status", nil)
		req.AddCookie(userCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("jobs status as admin", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/jobs/status", nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})

	t.Run("run unknown job", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"job_id": "no-such-job"})
		req, _ := http.NewRequest("POST", "/api/admin/jobs/run", bytes.NewBuffer(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("run session purge", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"job_id": "session-purge"})
		req, _ := http.NewRequest("POST", "/api/admin/jobs/run", bytes.NewBuffer(payload))
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202 (body %q)", rr.Code, rr.Body.String())
		}
	})
}
