// A generic HTTP source that pages through a JSON bookmark feed. The feed
// endpoint is expected to accept cursor/limit query parameters and respond
// with {"items": [...], "next_cursor": "...", "total": N}.
package jsonfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/suiren/x-bookmarker/internal/models"
)

type JSONFeedSource struct {
	client  *http.Client
	feedURL string
}

func New(feedURL string) *JSONFeedSource {
	return &JSONFeedSource{
		client:  &http.Client{Timeout: 30 * time.Second},
		feedURL: feedURL,
	}
}

func (s *JSONFeedSource) GetInfo() models.SourceInfo {
	return models.SourceInfo{
		ID:   "jsonfeed",
		Name: "JSON Feed",
	}
}

type feedResponse struct {
	Items      []models.RemoteBookmark `json:"items"`
	NextCursor string                  `json:"next_cursor"`
	Total      uint                    `json:"total"`
}

func (s *JSONFeedSource) FetchPage(ctx context.Context, cursor string, pageSize int) ([]models.RemoteBookmark, string, uint, error) {
	u, err := url.Parse(s.feedURL)
	if err != nil {
		return nil, "", 0, fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	q.Set("limit", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, "", 0, fmt.Errorf("Rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, "", 0, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return feed.Items, feed.NextCursor, feed.Total, nil
}
