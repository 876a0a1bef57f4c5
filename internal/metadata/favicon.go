package metadata

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder

	"github.com/nfnt/resize"
)

const faviconSize uint = 64

// FetchFavicon downloads the site's /favicon.ico, normalizes it to a 64px
// PNG and stores it under the data directory. It returns the path relative
// to the data directory. Favicons in formats Go cannot decode (typically
// real .ico containers) are stored as-is.
func (f *Fetcher) FetchFavicon(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid page url: %s", pageURL)
	}

	faviconURL := fmt.Sprintf("%s://%s/favicon.ico", u.Scheme, u.Host)
	resp, err := f.client.Get(faviconURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch favicon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("favicon returned status %d", resp.StatusCode)
	}

	// Cap reads at 1MB; no real favicon comes close.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty favicon response")
	}

	dir := filepath.Join(f.dataPath, "favicons")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := sanitizeHost(u.Hostname())

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not a format the image package understands; keep the raw bytes.
		relPath := filepath.Join("favicons", base+".ico")
		if err := os.WriteFile(filepath.Join(f.dataPath, relPath), data, 0o644); err != nil {
			return "", err
		}
		return relPath, nil
	}

	if img.Bounds().Dx() > int(faviconSize) || img.Bounds().Dy() > int(faviconSize) {
		img = resize.Thumbnail(faviconSize, faviconSize, img, resize.Lanczos3)
	}

	relPath := filepath.Join("favicons", base+".png")
	out, err := os.Create(filepath.Join(f.dataPath, relPath))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return "", fmt.Errorf("failed to encode favicon png: %w", err)
	}
	return relPath, nil
}

func sanitizeHost(host string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, host)
}
