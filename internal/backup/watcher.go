// This file implements a file system watcher for the backup directory.
// Files dropped into it (exports from this app or another instance) are
// imported automatically after a short debounce.

package backup

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherService watches the backup directory and imports dropped files.
type WatcherService struct {
	importer      *Importer
	path          string
	watcher       *fsnotify.Watcher
	pendingPaths  map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a watcher for the given backup directory.
func NewWatcherService(db *sql.DB, path string) *WatcherService {
	return &WatcherService{
		importer:      NewImporter(db),
		path:          path,
		pendingPaths:  make(map[string]bool),
		debounceDelay: 2 * time.Second, // Wait for writes to settle before importing
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the backup directory for dropped files.
func (w *WatcherService) Start() error {
	if err := os.MkdirAll(w.path, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Backup import watcher started for: %s", w.path)
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !importable(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pendingPaths[event.Name] = true
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.debounceTimer = time.AfterFunc(w.debounceDelay, w.importPending)
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Backup watcher error: %v", err)
		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) importPending() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pendingPaths))
	for p := range w.pendingPaths {
		paths = append(paths, p)
	}
	w.pendingPaths = make(map[string]bool)
	w.mu.Unlock()

	for _, p := range paths {
		n, err := w.importer.ImportFile(context.Background(), p)
		if err != nil {
			log.Printf("Backup import of %s failed: %v", p, err)
			continue
		}
		log.Printf("Imported %d bookmarks from %s", n, p)
	}
}

func importable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".zip", ".gz", ".tgz", ".tar":
		return true
	}
	return false
}
