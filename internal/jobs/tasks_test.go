package jobs_test

import (
	"testing"
	"time"

	"github.com/suiren/x-bookmarker/internal/config"
	"github.com/suiren/x-bookmarker/internal/jobs"
	"github.com/suiren/x-bookmarker/internal/store"
	"github.com/suiren/x-bookmarker/internal/testutil"
	"github.com/suiren/x-bookmarker/internal/websocket"
)

func TestPurgeSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	user, err := st.CreateUser("purged", "hash", "user")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	liveToken, err := st.CreateSession(user.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// Backdate a second session past its expiry.
	staleToken, _ := st.CreateSession(user.ID)
	if _, err := db.Exec("UPDATE sessions SET expiry = ? WHERE token = ?", time.Now().Add(-time.Hour), staleToken); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	ctx := &fakeJobContext{db: db, cfg: &config.Config{}, ws: websocket.NewHub()}
	ctx.jobMgr = jobs.NewManager(ctx)
	jobs.PurgeSessions(ctx)

	if _, err := st.GetUserFromSession(staleToken); err == nil {
		t.Error("expired session survived the purge")
	}
	if _, err := st.GetUserFromSession(liveToken); err != nil {
		t.Errorf("live session was purged: %v", err)
	}
}
