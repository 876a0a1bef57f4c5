package store_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/store"
)

func TestBookmarkCRUD(t *testing.T) {
	st, user := newTestStore(t)

	created, err := st.CreateBookmark(&models.Bookmark{
		UserID:  user.ID,
		URL:     "https://example.com/post",
		Title:   "A Post",
		SiteKey: "example.com",
	})
	if err != nil {
		t.Fatalf("CreateBookmark: %v", err)
	}

	// The (user_id, url) pair is unique.
	if _, err := st.CreateBookmark(&models.Bookmark{UserID: user.ID, URL: "https://example.com/post"}); err == nil {
		t.Error("duplicate url insert should fail")
	}

	got, err := st.GetBookmark(user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetBookmark: %v", err)
	}
	if got.Title != "A Post" || got.SiteKey != "example.com" {
		t.Errorf("unexpected bookmark: %+v", got)
	}

	got.Title = "Edited"
	got.Description = "with a description"
	if err := st.UpdateBookmark(user.ID, got); err != nil {
		t.Fatalf("UpdateBookmark: %v", err)
	}
	got, _ = st.GetBookmark(user.ID, created.ID)
	if got.Title != "Edited" || got.Description != "with a description" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := st.UpdateBookmark(user.ID+1, got); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("foreign update err = %v, want sql.ErrNoRows", err)
	}

	if err := st.DeleteBookmark(user.ID, created.ID); err != nil {
		t.Fatalf("DeleteBookmark: %v", err)
	}
	if err := st.DeleteBookmark(user.ID, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("repeat delete err = %v, want sql.ErrNoRows", err)
	}
}

func TestListBookmarksFilters(t *testing.T) {
	st, user := newTestStore(t)

	cat, err := st.CreateCategory(user.ID, "Tech")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	seed := []*models.Bookmark{
		{UserID: user.ID, URL: "https://blog.golang.org/slices", Title: "Go Slices", SiteKey: "golang.org", CategoryID: &cat.ID},
		{UserID: user.ID, URL: "https://example.com/cooking", Title: "Pasta Recipe", SiteKey: "example.com"},
		{UserID: user.ID, URL: "https://example.com/go-tips", Title: "Go Tips", SiteKey: "example.com"},
	}
	for _, b := range seed {
		if _, err := st.CreateBookmark(b); err != nil {
			t.Fatalf("CreateBookmark(%s): %v", b.URL, err)
		}
	}

	testCases := []struct {
		name   string
		filter store.BookmarkFilter
		want   int
	}{
		{"no filter", store.BookmarkFilter{}, 3},
		{"text search", store.BookmarkFilter{Query: "Go"}, 2},
		{"by category", store.BookmarkFilter{CategoryID: cat.ID}, 1},
		{"by site", store.BookmarkFilter{SiteKey: "example.com"}, 2},
		{"site and text", store.BookmarkFilter{SiteKey: "example.com", Query: "Go"}, 1},
		{"no match", store.BookmarkFilter{Query: "zzz"}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bookmarks, total, err := st.ListBookmarks(user.ID, tc.filter)
			if err != nil {
				t.Fatalf("ListBookmarks: %v", err)
			}
			if total != tc.want || len(bookmarks) != tc.want {
				t.Errorf("got %d/%d bookmarks, want %d", len(bookmarks), total, tc.want)
			}
		})
	}

	t.Run("pagination", func(t *testing.T) {
		bookmarks, total, err := st.ListBookmarks(user.ID, store.BookmarkFilter{Page: 2, PerPage: 2})
		if err != nil {
			t.Fatalf("ListBookmarks: %v", err)
		}
		if total != 3 || len(bookmarks) != 1 {
			t.Errorf("page 2 returned %d of %d, want 1 of 3", len(bookmarks), total)
		}
	})
}

func TestUpsertRemoteBookmark(t *testing.T) {
	st, user := newTestStore(t)

	remote := &models.Bookmark{
		UserID:   user.ID,
		URL:      "https://example.com/item-1",
		Title:    "Item 1",
		SiteKey:  "example.com",
		RemoteID: "r-1",
	}
	created, err := st.UpsertRemoteBookmark(remote)
	if err != nil {
		t.Fatalf("UpsertRemoteBookmark: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	// Same remote id with fresher data updates in place.
	remote2 := *remote
	remote2.Title = "Item 1 (renamed)"
	created, err = st.UpsertRemoteBookmark(&remote2)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should update, not create")
	}

	all, _ := st.ListAllBookmarks(user.ID)
	if len(all) != 1 {
		t.Fatalf("got %d bookmarks, want 1", len(all))
	}
	if all[0].Title != "Item 1 (renamed)" {
		t.Errorf("title = %q", all[0].Title)
	}

	t.Run("claims manual bookmark by url", func(t *testing.T) {
		if _, err := st.CreateBookmark(&models.Bookmark{
			UserID: user.ID, URL: "https://example.com/manual", Title: "Manual",
		}); err != nil {
			t.Fatalf("CreateBookmark: %v", err)
		}

		created, err := st.UpsertRemoteBookmark(&models.Bookmark{
			UserID: user.ID, URL: "https://example.com/manual", Title: "From Source", RemoteID: "r-2",
		})
		if err != nil {
			t.Fatalf("upsert over manual: %v", err)
		}
		if created {
			t.Error("url collision should update the existing row")
		}

		all, _ := st.ListAllBookmarks(user.ID)
		for _, b := range all {
			if b.URL == "https://example.com/manual" && b.RemoteID != "r-2" {
				t.Errorf("manual bookmark was not claimed: %+v", b)
			}
		}
	})
}

func TestFaviconQueries(t *testing.T) {
	st, user := newTestStore(t)

	b, _ := st.CreateBookmark(&models.Bookmark{UserID: user.ID, URL: "https://example.com/x", Title: "X"})

	missing, err := st.ListBookmarksMissingFavicon(10)
	if err != nil {
		t.Fatalf("ListBookmarksMissingFavicon: %v", err)
	}
	if len(missing) != 1 {
		t.Fatalf("got %d bookmarks missing favicons, want 1", len(missing))
	}

	if err := st.UpdateBookmarkFavicon(b.ID, "data/favicons/example.com.png"); err != nil {
		t.Fatalf("UpdateBookmarkFavicon: %v", err)
	}
	missing, _ = st.ListBookmarksMissingFavicon(10)
	if len(missing) != 0 {
		t.Errorf("bookmark still listed after favicon was stored")
	}
}
