// A mock source for development and testing purposes. It simulates a paged
// remote bookmark feed without making network calls.
package mockfeed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

type MockFeedSource struct {
	// Total number of items the fake feed pretends to hold.
	ItemCount int
	// When set, FetchPage returns this error on every call.
	Err error
}

func New() *MockFeedSource {
	return &MockFeedSource{ItemCount: 100}
}

func (s *MockFeedSource) GetInfo() models.SourceInfo {
	return models.SourceInfo{
		ID:   "mockfeed",
		Name: "Mock Feed",
	}
}

func (s *MockFeedSource) FetchPage(ctx context.Context, cursor string, pageSize int) ([]models.RemoteBookmark, string, uint, error) {
	if s.Err != nil {
		return nil, "", 0, s.Err
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", 0, fmt.Errorf("bad cursor %q", cursor)
		}
		start = n
	}

	var items []models.RemoteBookmark
	for i := start; i < start+pageSize && i < s.ItemCount; i++ {
		items = append(items, models.RemoteBookmark{
			RemoteID:    fmt.Sprintf("mock-%d", i+1),
			URL:         fmt.Sprintf("https://example.com/articles/%d", i+1),
			Title:       fmt.Sprintf("Mock Article %d", i+1),
			Description: fmt.Sprintf("Description for mock article %d.", i+1),
			SavedAt:     time.Now().AddDate(0, 0, -i),
		})
	}

	next := ""
	if start+pageSize < s.ItemCount {
		next = strconv.Itoa(start + pageSize)
	}
	return items, next, uint(s.ItemCount), nil
}
