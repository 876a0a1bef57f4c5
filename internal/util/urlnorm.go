// Helpers for normalizing bookmark URLs and deriving grouping keys.

package util

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeURL canonicalizes a bookmark URL: require an absolute http(s) URL,
// lowercase the scheme and host, strip a default port, drop the fragment and
// trim a trailing slash from the path. Two bookmarks that only differ in these
// ways are considered the same link.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		// Be forgiving about the scheme, browsers are too.
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host")
	}

	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	u.Fragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// SiteKey returns the registrable domain for a normalized URL, e.g.
// "news.ycombinator.com" -> "ycombinator.com". It is stored alongside each
// bookmark so the UI can group links by site. Falls back to the bare hostname
// when the public suffix list has no answer (IP addresses, localhost).
func SiteKey(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
