package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sql driver

	"github.com/suiren/x-bookmarker/internal/assets"
	"github.com/suiren/x-bookmarker/internal/db"
)

// SetupTestDB creates an in-memory SQLite database and applies all migrations.
// It returns the database connection, ready for use in tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use in-memory database for testing to ensure tests are fast and isolated.
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return database
}
