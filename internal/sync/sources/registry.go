package sources

import (
	"fmt"

	"github.com/suiren/x-bookmarker/internal/models"
)

var registry = make(map[string]models.Source)

// Register adds a new source to the registry. It's called at startup.
func Register(s models.Source) {
	info := s.GetInfo()
	if _, exists := registry[info.ID]; exists {
		// Panic is appropriate here as it's a developer error during setup.
		panic(fmt.Sprintf("source with ID '%s' is already registered", info.ID))
	}
	registry[info.ID] = s
}

// Get returns a source by its ID.
func Get(id string) (models.Source, bool) {
	s, ok := registry[id]
	return s, ok
}

// GetAll returns a list of information for all registered sources.
func GetAll() []models.SourceInfo {
	var infos []models.SourceInfo
	for _, s := range registry {
		infos = append(infos, s.GetInfo())
	}
	return infos
}

// UnregisterAll empties the registry. Used by tests.
func UnregisterAll() {
	registry = make(map[string]models.Source)
}
