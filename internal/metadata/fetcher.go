// Fetching page metadata (title, description) for newly added bookmarks.

package metadata

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// PageMeta holds what we could scrape from a bookmarked page.
type PageMeta struct {
	Title       string
	Description string
}

// Fetcher retrieves page metadata and favicons over HTTP. dataPath is the
// directory favicon files are stored under.
type Fetcher struct {
	client   *http.Client
	dataPath string
}

func NewFetcher(dataPath string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		dataPath: dataPath,
	}
}

// FetchPageMeta downloads the page and scrapes its title and description.
// Pages in legacy encodings are transcoded via the charset reader before
// parsing.
func (f *Fetcher) FetchPageMeta(pageURL string) (*PageMeta, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "x-bookmarker/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to detect page encoding: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	meta := &PageMeta{}
	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		meta.Title = strings.TrimSpace(og)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}
	if meta.Description == "" {
		if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			meta.Description = strings.TrimSpace(og)
		}
	}

	return meta, nil
}
