package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/testutil"
)

func TestListSources(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "lister", "password", "user")

	req, _ := http.NewRequest("GET", "/api/sources", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var sources []models.SourceInfo
	json.Unmarshal(rr.Body.Bytes(), &sources)
	if len(sources) != 1 || sources[0].ID != "mockfeed" {
		t.Fatalf("unexpected sources: %+v", sources)
	}
}

func TestStartSync(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "syncer", "password", "user")

	startSync := func() *httptest.ResponseRecorder {
		payload, _ := json.Marshal(map[string]string{"source": "mockfeed"})
		req, _ := http.NewRequest("POST", "/api/sync", bytes.NewBuffer(payload))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := startSync()
	if rr.Code != http.StatusAccepted {
		t.Fatalf("start sync status = %d, want 202 (body %q)", rr.Code, rr.Body.String())
	}
	var job models.SyncJob
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
		t.Fatalf("invalid job body: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job has no id")
	}

	t.Run("job converges to completed", func(t *testing.T) {
		deadline := time.After(5 * time.Second)
		for {
			current, err := server.Store().GetJob(context.Background(), job.ID)
			if err != nil {
				t.Fatalf("GetJob: %v", err)
			}
			if current.State.IsTerminal() {
				if current.State != models.JobCompleted {
					t.Fatalf("job ended %s (%s), want completed", current.State, current.FailedReason)
				}
				if current.Result == nil || current.Result.TotalFetched != 100 {
					t.Fatalf("unexpected result: %+v", current.Result)
				}
				break
			}
			select {
			case <-deadline:
				t.Fatalf("job never finished, still %s", current.State)
			case <-time.After(10 * time.Millisecond):
			}
		}
	})

	t.Run("jobs are listed", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/sync/jobs", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("list jobs status = %d, want 200", rr.Code)
		}
		var jobs []models.SyncJob
		json.Unmarshal(rr.Body.Bytes(), &jobs)
		if len(jobs) != 1 || jobs[0].ID != job.ID {
			t.Fatalf("unexpected job list: %+v", jobs)
		}
	})

	t.Run("get foreign job is denied", func(t *testing.T) {
		otherCookie := testutil.GetAuthCookie(t, server, "onlooker", "password", "user")
		req, _ := http.NewRequest("GET", "/api/sync/jobs/"+job.ID, nil)
		req.AddCookie(otherCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("foreign get status = %d, want 403", rr.Code)
		}
	})
}

func TestStartSyncRejectsConcurrentJob(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "busy", "password", "user")

	user, _ := server.Store().GetUserByUsername("busy")
	// Park an active job directly in the store, so the handler's own runner
	// can't finish it before the second request lands.
	if _, err := server.Store().CreateSyncJob(user.ID); err != nil {
		t.Fatalf("CreateSyncJob: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"source": "mockfeed"})
	req, _ := http.NewRequest("POST", "/api/sync", bytes.NewBuffer(payload))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Errorf("second sync status = %d, want 409", rr.Code)
	}
}

func TestStartSyncUnknownSource(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "lost", "password", "user")

	payload, _ := json.Marshal(map[string]string{"source": "does-not-exist"})
	req, _ := http.NewRequest("POST", "/api/sync", bytes.NewBuffer(payload))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCancelSyncJob(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "canceller", "password", "user")

	user, _ := server.Store().GetUserByUsername("canceller")
	job, _ := server.Store().CreateSyncJob(user.ID)

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/sync/jobs/%s/cancel", job.ID), nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200 (body %q)", rr.Code, rr.Body.String())
	}

	current, err := server.Store().GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if current.State != models.JobCancelled {
		t.Errorf("state = %s, want cancelled", current.State)
	}

	// A second cancel hits an already-terminal job.
	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", fmt.Sprintf("/api/sync/jobs/%s/cancel", job.ID), nil)
	req.AddCookie(cookie)
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Errorf("repeat cancel status = %d, want 409", rr.Code)
	}
}
