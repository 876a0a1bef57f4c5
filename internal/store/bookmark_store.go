package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

// BookmarkFilter narrows ListBookmarks. Zero values mean "no filter".
type BookmarkFilter struct {
	Query      string // Substring match against url, title and description
	CategoryID int64
	SiteKey    string
	Page       int
	PerPage    int
}

const bookmarkColumns = "id, user_id, url, title, description, site_key, favicon_path, category_id, remote_id, created_at, updated_at"

func scanBookmark(row interface{ Scan(...interface{}) error }) (*models.Bookmark, error) {
	var b models.Bookmark
	var categoryID sql.NullInt64
	err := row.Scan(&b.ID, &b.UserID, &b.URL, &b.Title, &b.Description, &b.SiteKey,
		&b.FaviconPath, &categoryID, &b.RemoteID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		b.CategoryID = &categoryID.Int64
	}
	return &b, nil
}

// CreateBookmark inserts a new bookmark for the user.
func (s *Store) CreateBookmark(b *models.Bookmark) (*models.Bookmark, error) {
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO bookmarks (user_id, url, title, description, site_key, favicon_path, category_id, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.URL, b.Title, b.Description, b.SiteKey, b.FaviconPath, b.CategoryID, b.RemoteID, now, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

// GetBookmark retrieves a single bookmark owned by the user.
func (s *Store) GetBookmark(userID, id int64) (*models.Bookmark, error) {
	row := s.db.QueryRow("SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ? AND user_id = ?", id, userID)
	return scanBookmark(row)
}

// ListBookmarks returns a page of the user's bookmarks, newest first, along
// with the total count matching the filter.
func (s *Store) ListBookmarks(userID int64, f BookmarkFilter) ([]*models.Bookmark, int, error) {
	where := "WHERE user_id = ?"
	args := []interface{}{userID}

	if f.Query != "" {
		where += " AND (url LIKE ? OR title LIKE ? OR description LIKE ?)"
		like := "%" + f.Query + "%"
		args = append(args, like, like, like)
	}
	if f.CategoryID != 0 {
		where += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.SiteKey != "" {
		where += " AND site_key = ?"
		args = append(args, f.SiteKey)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bookmarks "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PerPage <= 0 {
		f.PerPage = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM bookmarks %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", bookmarkColumns, where)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, 0, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, total, rows.Err()
}

// ListAllBookmarks returns every bookmark owned by the user, oldest first.
// Used by the backup exporter, which needs the full set rather than a page.
func (s *Store) ListAllBookmarks(userID int64) ([]*models.Bookmark, error) {
	rows, err := s.db.Query("SELECT "+bookmarkColumns+" FROM bookmarks WHERE user_id = ? ORDER BY created_at ASC, id ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// UpdateBookmark updates the editable fields of a bookmark owned by the user.
func (s *Store) UpdateBookmark(userID int64, b *models.Bookmark) error {
	res, err := s.db.Exec(`
		UPDATE bookmarks SET title = ?, description = ?, category_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Title, b.Description, b.CategoryID, time.Now(), b.ID, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBookmark removes a bookmark owned by the user.
func (s *Store) DeleteBookmark(userID, id int64) error {
	res, err := s.db.Exec("DELETE FROM bookmarks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertRemoteBookmark inserts a bookmark fetched from the sync source, or
// refreshes the existing row matched by (user_id, remote_id). It reports
// whether a new row was created so the sync runner can count new vs updated.
func (s *Store) UpsertRemoteBookmark(b *models.Bookmark) (created bool, err error) {
	var existingID int64
	err = s.db.QueryRow("SELECT id FROM bookmarks WHERE user_id = ? AND remote_id = ?", b.UserID, b.RemoteID).Scan(&existingID)
	if err == sql.ErrNoRows {
		// Not seen before; the URL may still collide with a manually added
		// bookmark, in which case we claim it for the sync source.
		err = s.db.QueryRow("SELECT id FROM bookmarks WHERE user_id = ? AND url = ?", b.UserID, b.URL).Scan(&existingID)
		if err == sql.ErrNoRows {
			_, err = s.CreateBookmark(b)
			return err == nil, err
		}
	}
	if err != nil {
		return false, err
	}

	_, err = s.db.Exec(`
		UPDATE bookmarks SET url = ?, title = ?, description = ?, site_key = ?, remote_id = ?, updated_at = ?
		WHERE id = ?`,
		b.URL, b.Title, b.Description, b.SiteKey, b.RemoteID, time.Now(), existingID)
	return false, err
}

// ImportBookmark inserts a bookmark from a backup file, or refreshes title
// and description of the existing row matched by (user_id, url).
func (s *Store) ImportBookmark(b *models.Bookmark) error {
	_, err := s.db.Exec(`
		INSERT INTO bookmarks (user_id, url, title, description, site_key, favicon_path, remote_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP`,
		b.UserID, b.URL, b.Title, b.Description, b.SiteKey, b.FaviconPath, b.RemoteID, time.Now(), time.Now())
	return err
}

// ListBookmarksMissingFavicon returns bookmarks without a stored favicon,
// used by the favicon-refresh maintenance job.
func (s *Store) ListBookmarksMissingFavicon(limit int) ([]*models.Bookmark, error) {
	rows, err := s.db.Query("SELECT "+bookmarkColumns+" FROM bookmarks WHERE favicon_path = '' ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// UpdateBookmarkFavicon records the stored favicon path for a bookmark.
func (s *Store) UpdateBookmarkFavicon(id int64, faviconPath string) error {
	_, err := s.db.Exec("UPDATE bookmarks SET favicon_path = ? WHERE id = ?", faviconPath, id)
	return err
}
