package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/suiren/x-bookmarker/internal/models"
	"github.com/suiren/x-bookmarker/internal/store"
	"github.com/suiren/x-bookmarker/internal/util"
)

// Importer loads backup manifests into the database.
type Importer struct {
	st *store.Store
}

func NewImporter(db *sql.DB) *Importer {
	return &Importer{st: store.New(db)}
}

// ImportFile imports a dropped backup file. Plain .json files are read
// directly; anything else is treated as an archive (zip, tar.gz, ...) and
// every bookmarks.json found inside is imported. Returns the number of
// bookmarks imported.
func (i *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		return i.importManifest(data)
	}

	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	total := 0
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(p) != ManifestName {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		n, err := i.importManifest(data)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return total, err
	}
	if total == 0 {
		return 0, fmt.Errorf("no %s found in %s", ManifestName, path)
	}
	return total, nil
}

// importManifest resolves the manifest's user and upserts its bookmarks by
// URL. Rows that fail to normalize are skipped with a log line rather than
// aborting the whole import.
func (i *Importer) importManifest(data []byte) (int, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("invalid backup manifest: %w", err)
	}
	if manifest.Username == "" {
		return 0, fmt.Errorf("backup manifest has no username")
	}

	user, err := i.st.GetUserByUsername(manifest.Username)
	if err != nil {
		return 0, fmt.Errorf("unknown backup user %q: %w", manifest.Username, err)
	}

	imported := 0
	for _, b := range manifest.Bookmarks {
		normalized, err := util.NormalizeURL(b.URL)
		if err != nil {
			log.Printf("Backup import: skipping %q: %v", b.URL, err)
			continue
		}
		err = i.st.ImportBookmark(&models.Bookmark{
			UserID:      user.ID,
			URL:         normalized,
			Title:       b.Title,
			Description: b.Description,
			SiteKey:     util.SiteKey(normalized),
			FaviconPath: b.FaviconPath,
			RemoteID:    b.RemoteID,
		})
		if err != nil {
			log.Printf("Backup import: failed to save %q: %v", b.URL, err)
			continue
		}
		imported++
	}
	return imported, nil
}
