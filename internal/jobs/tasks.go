// Built-in maintenance job tasks. Registered against the manager at startup;
// the scheduled sync-all task lives in main because it depends on the sync
// runner.

package jobs

import (
	"log"

	"github.com/suiren/x-bookmarker/internal/metadata"
	"github.com/suiren/x-bookmarker/internal/store"
)

// PurgeSessions deletes expired session rows.
func PurgeSessions(ctx JobContext) {
	st := store.New(ctx.DB())
	n, err := st.DeleteExpiredSessions()
	if err != nil {
		log.Printf("Session purge failed: %v", err)
		ctx.JobManager().Fail("session-purge", err.Error())
		return
	}
	if n > 0 {
		log.Printf("Purged %d expired sessions", n)
	}
}

// RefreshFavicons fetches favicons for bookmarks that don't have one yet.
// Best effort: individual fetch failures are skipped, not retried.
func RefreshFavicons(ctx JobContext) {
	st := store.New(ctx.DB())
	fetcher := metadata.NewFetcher(ctx.Config().Data.Path)

	bookmarks, err := st.ListBookmarksMissingFavicon(100)
	if err != nil {
		log.Printf("Favicon refresh failed to list bookmarks: %v", err)
		ctx.JobManager().Fail("favicon-refresh", err.Error())
		return
	}

	var fetched int
	for _, b := range bookmarks {
		path, err := fetcher.FetchFavicon(b.URL)
		if err != nil {
			continue
		}
		if err := st.UpdateBookmarkFavicon(b.ID, path); err != nil {
			log.Printf("Failed to record favicon for bookmark %d: %v", b.ID, err)
			continue
		}
		fetched++
	}
	log.Printf("Favicon refresh done: %d of %d fetched", fetched, len(bookmarks))
}
