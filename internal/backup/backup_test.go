package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/suiren/x-bookmarker/internal/auth"
	"github.com/suiren/x-bookmarker/internal/backup"
	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/store"
	"github.com/suiren/x-bookmarker/internal/testutil"
)

func TestExportImportRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	hash, _ := auth.HashPassword("password")
	user, err := st.CreateUser("roundtrip", hash, "user")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for _, url := range []string{"https://example.com/a", "https://example.com/b"} {
		_, err := st.CreateBookmark(&models.Bookmark{
			UserID:  user.ID,
			URL:     url,
			Title:   "Bookmark " + url,
			SiteKey: "example.com",
		})
		if err != nil {
			t.Fatalf("CreateBookmark: %v", err)
		}
	}

	bookmarks, err := st.ListAllBookmarks(user.ID)
	if err != nil {
		t.Fatalf("ListAllBookmarks: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "backup.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	if err := backup.WriteArchive(f, user.Username, bookmarks); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	f.Close()

	// Import into a fresh database with the same username.
	db2 := testutil.SetupTestDB(t)
	st2 := store.New(db2)
	if _, err := st2.CreateUser("roundtrip", hash, "user"); err != nil {
		t.Fatalf("CreateUser on target: %v", err)
	}

	n, err := backup.NewImporter(db2).ImportFile(context.Background(), archivePath)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d bookmarks, want 2", n)
	}

	user2, _ := st2.GetUserByUsername("roundtrip")
	restored, err := st2.ListAllBookmarks(user2.ID)
	if err != nil {
		t.Fatalf("ListAllBookmarks on target: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored %d bookmarks, want 2", len(restored))
	}
}

func TestImportPlainJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	hash, _ := auth.HashPassword("password")
	if _, err := st.CreateUser("jsonuser", hash, "user"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	manifest := `{
		"username": "jsonuser",
		"bookmarks": [
			{"url": "https://example.com/a", "title": "A"},
			{"url": "not a url", "title": "skipped"},
			{"url": "https://example.com/b", "title": "B"}
		]
	}`
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	n, err := backup.NewImporter(db).ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d bookmarks, want 2 (bad row skipped)", n)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	hash, _ := auth.HashPassword("password")
	if _, err := st.CreateUser("twice", hash, "user"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	manifest := `{"username": "twice", "bookmarks": [{"url": "https://example.com/a", "title": "A"}]}`
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	os.WriteFile(path, []byte(manifest), 0o644)

	importer := backup.NewImporter(db)
	for i := 0; i < 2; i++ {
		if _, err := importer.ImportFile(context.Background(), path); err != nil {
			t.Fatalf("ImportFile run %d: %v", i+1, err)
		}
	}

	user, _ := st.GetUserByUsername("twice")
	bookmarks, _ := st.ListAllBookmarks(user.ID)
	if len(bookmarks) != 1 {
		t.Errorf("got %d bookmarks after double import, want 1", len(bookmarks))
	}
}

func TestImportUnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)

	manifest := `{"username": "ghost", "bookmarks": []}`
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	os.WriteFile(path, []byte(manifest), 0o644)

	if _, err := backup.NewImporter(db).ImportFile(context.Background(), path); err == nil {
		t.Error("expected an error for a manifest naming an unknown user")
	}
}
