package models

import (
	"context"
	"time"
)

// SourceInfo describes a registered sync source.
type SourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RemoteBookmark is one bookmark as reported by a sync source.
type RemoteBookmark struct {
	RemoteID    string    `json:"remote_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// Source fetches a user's remote bookmarks page by page. Implementations
// must be I/O-bound and context-aware; a blocking source would stall every
// live progress stream.
type Source interface {
	GetInfo() SourceInfo

	// FetchPage returns one batch starting at cursor (empty for the first
	// page), the cursor for the next page (empty when exhausted) and, when
	// known, the total number of items (0 means unknown).
	FetchPage(ctx context.Context, cursor string, pageSize int) (items []RemoteBookmark, nextCursor string, total uint, err error)
}
