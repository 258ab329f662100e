package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// WithPage appends the page query parameter to a section URL. The separator
// depends on whether the URL already carries a query string.
func WithPage(sectionURL string, page int) string {
	sep := "?"
	if strings.Contains(sectionURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sp=%d", sectionURL, sep, page)
}
