package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/listcrawl/internal/cursor"
)

const maxBodySize = 16 << 20

// HTTP fetches server-rendered pages without a browser. It shares the
// browser's contract: markup without the content marker is ErrNoContent.
type HTTP struct {
	opts   Options
	client *http.Client
}

// NewHTTP builds a plain HTTP fetcher. The first proxy in the pool, if any,
// is used for every request, and session cookies are loaded into a jar.
func NewHTTP(opts Options) (*HTTP, error) {
	opts.applyDefaults()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p := opts.Proxies.Next(); p != "" {
		proxyURL, err := url.Parse(p)
		if err != nil {
			return nil, newError(CodeValidation, p, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if s := opts.Session; s != nil && s.URL != "" {
		if u, err := url.Parse(s.URL); err == nil {
			jar.SetCookies(u, s.HTTPCookies())
		}
	}

	return &HTTP{
		opts: opts,
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   opts.NavigateTimeout,
		},
	}, nil
}

func (h *HTTP) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := h.opts.wait(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", newError(CodeValidation, rawURL, err)
	}
	if h.opts.UserAgent != "" {
		req.Header.Set("User-Agent", h.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	for key, value := range h.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", newError(CodeTimeout, rawURL, err)
		}
		return "", newError(CodeNetwork, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e := newError(CodeStatus, rawURL, nil)
		e.StatusCode = resp.StatusCode
		return "", e
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", newError(CodeNetwork, rawURL, err)
	}

	if marker := h.opts.ContentMarker; marker != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil || doc.Find(marker).Length() == 0 {
			cursor.Logger(ctx).Debug().Str("url", rawURL).Msg("Content marker missing from response")
			return "", newError(CodeNoContent, rawURL, ErrNoContent)
		}
	}

	if err := sleep(ctx, h.opts.SettleDelay); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(body), ""), nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
