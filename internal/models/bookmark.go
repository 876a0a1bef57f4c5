// This file defines the core data structures (models) for our application.
// These structs represent the bookmarks and categories in a user's collection.

package models

import "time"

// Bookmark represents a single saved link.
type Bookmark struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SiteKey     string    `json:"site_key"` // Registrable domain, used for grouping
	FaviconPath string    `json:"favicon_path,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"` // Nullable, bookmarks can be uncategorized
	RemoteID    string    `json:"remote_id,omitempty"`   // Identifier at the sync source, empty for manual bookmarks
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category is a user-defined grouping for bookmarks.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
