package sse

import "github.com/suiren/x-bookmarker/internal/models"

// Authorize reports whether the given user may subscribe to the job's
// progress stream. A nil job is always denied; callers that want to report
// "not found" separately must check for the job's existence first.
// Ownership is checked once, when the stream is opened, and holds for the
// lifetime of the stream.
func Authorize(userID int64, job *models.SyncJob) bool {
	if job == nil {
		return false
	}
	return job.UserID == userID
}
