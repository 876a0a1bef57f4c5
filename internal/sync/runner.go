// The sync runner executes one sync job: it pages through a source, upserts
// bookmarks and keeps the job row's progress snapshot current so SSE
// sessions (and the admin websocket feed) can report it live.

package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/store"
	"github.com/suiren/x-bookmarker/internal/util"
	"github.com/suiren/x-bookmarker/internal/websocket"
)

const maxRecordedErrors = 20

// Runner executes sync jobs against the store.
type Runner struct {
	st       *store.Store
	hub      *websocket.Hub
	pageSize int
}

func NewRunner(db *sql.DB, hub *websocket.Hub, pageSize int) *Runner {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Runner{st: store.New(db), hub: hub, pageSize: pageSize}
}

// Run executes the job until completion, failure or cancellation. It blocks;
// callers start it with `go runner.Run(...)`. The job row must already exist
// in the queued state.
func (r *Runner) Run(ctx context.Context, job *models.SyncJob, source models.Source) {
	started := time.Now()

	if err := r.st.MarkJobRunning(job.ID); err != nil {
		// Most likely cancelled while still queued; nothing to do.
		log.Printf("Sync job %s did not start: %v", job.ID, err)
		return
	}

	var progress progressCounter
	var cursor string

	result := &models.SyncResult{}
	for {
		// A cancel request lands in the job row as a terminal state; honor
		// it between batches.
		current, err := r.st.GetJob(ctx, job.ID)
		if err == nil && current.State == models.JobCancelled {
			log.Printf("Sync job %s cancelled after %d items", job.ID, progress.Processed)
			r.broadcast(job.ID, "Sync cancelled", progress.Snapshot(), "cancelled", true)
			return
		}

		items, nextCursor, total, err := source.FetchPage(ctx, cursor, r.pageSize)
		if err != nil {
			reason := err.Error()
			if ferr := r.st.FailSyncJob(job.ID, reason); ferr != nil {
				log.Printf("Failed to mark sync job %s failed: %v", job.ID, ferr)
			}
			r.broadcast(job.ID, "Sync failed: "+reason, progress.Snapshot(), "failed", true)
			return
		}
		progress.Total = total

		for _, item := range items {
			normalized, err := util.NormalizeURL(item.URL)
			if err != nil {
				progress.RecordError(fmt.Sprintf("skipped %q: %v", item.URL, err))
				continue
			}
			created, err := r.st.UpsertRemoteBookmark(&models.Bookmark{
				UserID:      job.UserID,
				URL:         normalized,
				Title:       item.Title,
				Description: item.Description,
				SiteKey:     util.SiteKey(normalized),
				RemoteID:    item.RemoteID,
			})
			if err != nil {
				progress.RecordError(fmt.Sprintf("failed to save %q: %v", item.URL, err))
				continue
			}
			result.TotalFetched++
			if created {
				result.NewBookmarks++
			} else {
				result.UpdatedBookmarks++
			}
			progress.Advance(item.Title)
		}

		snapshot := progress.Snapshot()
		if err := r.st.UpdateJobProgress(job.ID, snapshot); err != nil {
			log.Printf("Failed to update progress for sync job %s: %v", job.ID, err)
		}
		r.broadcast(job.ID, fmt.Sprintf("Synced %d bookmarks", progress.Processed), snapshot, "running", false)

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	final := progress.Snapshot()
	final.Percentage = 100
	final.CurrentItem = ""
	result.DurationMs = time.Since(started).Milliseconds()
	result.Errors = final.Errors

	if err := r.st.CompleteSyncJob(job.ID, final, result); err != nil {
		log.Printf("Failed to complete sync job %s: %v", job.ID, err)
		return
	}
	log.Printf("Sync job %s completed: %d fetched, %d new, %d updated",
		job.ID, result.TotalFetched, result.NewBookmarks, result.UpdatedBookmarks)
	r.broadcast(job.ID, "Sync completed", final, "completed", true)
}

// broadcast mirrors job progress to the admin websocket feed.
func (r *Runner) broadcast(jobID, message string, p models.JobProgress, status string, done bool) {
	if r.hub == nil {
		return
	}
	r.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:    jobID,
		Message:  message,
		Progress: float64(p.Percentage),
		Status:   status,
		Done:     done,
	})
}
