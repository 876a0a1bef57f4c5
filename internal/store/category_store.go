package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

// CreateCategory adds a category for the user. Names are case-insensitive
// unique per user; creating an existing name returns the existing row.
func (s *Store) CreateCategory(userID int64, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	var cat models.Category
	err := s.db.QueryRow(`
		INSERT INTO categories (user_id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET name = excluded.name
		RETURNING id, user_id, name, created_at`,
		userID, name, time.Now()).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns the user's categories sorted by name.
func (s *Store) ListCategories(userID int64) ([]*models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, created_at
		FROM categories WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, &cat)
	}
	return cats, rows.Err()
}

// GetCategory retrieves a single category owned by the user.
func (s *Store) GetCategory(userID, id int64) (*models.Category, error) {
	var cat models.Category
	err := s.db.QueryRow("SELECT id, user_id, name, created_at FROM categories WHERE id = ? AND user_id = ?", id, userID).
		Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// RenameCategory updates a category's name.
func (s *Store) RenameCategory(userID, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	res, err := s.db.Exec("UPDATE categories SET name = ? WHERE id = ? AND user_id = ?", name, id, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCategory removes a category. Bookmarks in it become uncategorized
// via the schema's ON DELETE SET NULL.
func (s *Store) DeleteCategory(userID, id int64) error {
	res, err := s.db.Exec("DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
