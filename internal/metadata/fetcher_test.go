package metadata

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchPageMeta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
			<title>Plain Title</title>
			<meta name="description" content="A description.">
		</head><body></body></html>`))
	}))
	defer server.Close()

	meta, err := NewFetcher(t.TempDir()).FetchPageMeta(server.URL)
	if err != nil {
		t.Fatalf("FetchPageMeta: %v", err)
	}
	if meta.Title != "Plain Title" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Description != "A description." {
		t.Errorf("description = %q", meta.Description)
	}
}

func TestFetchPageMetaPrefersOpenGraph(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<title>Fallback Title</title>
			<meta property="og:title" content="OG Title">
			<meta property="og:description" content="OG description.">
		</head></html>`))
	}))
	defer server.Close()

	meta, err := NewFetcher(t.TempDir()).FetchPageMeta(server.URL)
	if err != nil {
		t.Fatalf("FetchPageMeta: %v", err)
	}
	if meta.Title != "OG Title" {
		t.Errorf("title = %q, want the og:title", meta.Title)
	}
	if meta.Description != "OG description." {
		t.Errorf("description = %q, want the og:description", meta.Description)
	}
}

func TestFetchPageMetaErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewFetcher(t.TempDir()).FetchPageMeta(server.URL); err == nil {
		t.Error("expected an error for a 404 page")
	}
}

func TestFetchFaviconResizesPNG(t *testing.T) {
	// Serve a 128x128 png; expect it stored at 64px.
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 128, 128)))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/favicon.ico" {
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	dataPath := t.TempDir()
	relPath, err := NewFetcher(dataPath).FetchFavicon(server.URL + "/some/page")
	if err != nil {
		t.Fatalf("FetchFavicon: %v", err)
	}
	if !strings.HasSuffix(relPath, ".png") {
		t.Errorf("path = %q, want a .png", relPath)
	}

	f, err := os.Open(filepath.Join(dataPath, relPath))
	if err != nil {
		t.Fatalf("open stored favicon: %v", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode stored favicon: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("stored favicon is %dx%d, want 64x64", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFetchFaviconKeepsUndecodableIco(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A real .ico header the image package cannot decode.
		w.Write([]byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x10})
	}))
	defer server.Close()

	dataPath := t.TempDir()
	relPath, err := NewFetcher(dataPath).FetchFavicon(server.URL)
	if err != nil {
		t.Fatalf("FetchFavicon: %v", err)
	}
	if !strings.HasSuffix(relPath, ".ico") {
		t.Errorf("path = %q, want raw .ico fallback", relPath)
	}
	if _, err := os.Stat(filepath.Join(dataPath, relPath)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestFetchFaviconMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer server.Close()

	if _, err := NewFetcher(t.TempDir()).FetchFavicon(server.URL); err == nil {
		t.Error("expected an error when the site has no favicon")
	}
}

func TestSanitizeHost(t *testing.T) {
	testCases := []struct{ in, want string }{
		{"Example.COM", "example.com"},
		{"sub.example.com", "sub.example.com"},
		{"host:8080", "host_8080"},
		{"with spaces", "with_spaces"},
	}
	for _, tc := range testCases {
		if got := sanitizeHost(tc.in); got != tc.want {
			t.Errorf("sanitizeHost(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
