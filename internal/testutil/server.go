package testutil

import (
	"database/sql"
	"testing"

	"github.com/suiren/x-bookmarker/internal/api"
	"github.com/suiren/x-bookmarker/internal/config"
	"github.com/suiren/x-bookmarker/internal/core"
	"github.com/suiren/x-bookmarker/internal/sync/sources"
	"github.com/suiren/x-bookmarker/internal/sync/sources/mockfeed"
	"github.com/suiren/x-bookmarker/internal/websocket"
)

// SetupTestApp wires an in-memory app with the mock feed source registered.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := config.Defaults()
	hub := websocket.NewHub()
	go hub.Run()
	app := core.NewApp(cfg, db, hub, "test")

	t.Cleanup(func() {
		sources.UnregisterAll()
	})
	sources.Register(mockfeed.New())

	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}
