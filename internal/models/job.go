package models

import (
	"errors"
	"time"
)

// ErrJobNotFound is returned by the store when a sync job id does not exist.
// Callers use errors.Is to tell a vanished job apart from a backing-store error.
var ErrJobNotFound = errors.New("sync job not found")

// JobState is the lifecycle state of a sync job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// IsTerminal reports whether the state is one a job never leaves.
func (s JobState) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobProgress is a snapshot of how far a sync job has gotten.
// A Total of 0 means the total is not yet known.
type JobProgress struct {
	Total       uint     `json:"total"`
	Processed   uint     `json:"processed"`
	Percentage  int      `json:"percentage"`
	CurrentItem string   `json:"currentItem,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// SyncResult is populated when a job completes successfully.
type SyncResult struct {
	TotalFetched     int      `json:"totalFetched"`
	NewBookmarks     int      `json:"newBookmarks"`
	UpdatedBookmarks int      `json:"updatedBookmarks"`
	DurationMs       int64    `json:"durationMs"`
	Errors           []string `json:"errors,omitempty"`
}

// SyncJob represents one background sync run for a user.
// Once State is terminal the row never changes again; Result and FailedReason
// are written in the same update as the terminal transition.
type SyncJob struct {
	ID           string      `json:"id"`
	UserID       int64       `json:"user_id"`
	State        JobState    `json:"state"`
	Progress     JobProgress `json:"progress"`
	Result       *SyncResult `json:"result,omitempty"`        // Only set when state == completed
	FailedReason string      `json:"failed_reason,omitempty"` // Only set when state == failed
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
