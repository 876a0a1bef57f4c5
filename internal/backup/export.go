// Backup export: a zip archive holding the user's bookmarks as JSON. The
// same manifest shape is what the import watcher accepts back.

package backup

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

// ManifestName is the JSON file inside every backup archive.
const ManifestName = "bookmarks.json"

// Manifest is the backup file format.
type Manifest struct {
	Username   string             `json:"username"`
	ExportedAt time.Time          `json:"exported_at"`
	Bookmarks  []*models.Bookmark `json:"bookmarks"`
}

// WriteArchive writes a zip archive containing the manifest to w.
func WriteArchive(w io.Writer, username string, bookmarks []*models.Bookmark) error {
	manifest := Manifest{
		Username:   username,
		ExportedAt: time.Now().UTC(),
		Bookmarks:  bookmarks,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup manifest: %w", err)
	}

	zipWriter := zip.NewWriter(w)
	f, err := zipWriter.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("failed to create manifest in zip: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest to zip: %w", err)
	}
	return zipWriter.Close()
}
