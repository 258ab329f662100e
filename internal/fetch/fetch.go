// Package fetch retrieves rendered listing pages.
package fetch

import (
	"context"
	"time"

	"github.com/law-makers/listcrawl/internal/auth"
	"github.com/law-makers/listcrawl/internal/proxy"
	"github.com/law-makers/listcrawl/internal/ratelimit"
	"github.com/law-makers/listcrawl/internal/retry"
)

// Fetcher returns the markup of a page once its listing content is present.
// A page that never shows content yields ErrNoContent. Implementations are
// not safe for concurrent use; the crawler fetches one page at a time.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// Default timings
const (
	DefaultContentTimeout  = 10 * time.Second
	DefaultSettleDelay     = 2 * time.Second
	DefaultNavigateTimeout = 30 * time.Second
)

// Options is shared by all fetchers. Zero values take the defaults above.
type Options struct {
	// ContentMarker is the CSS selector whose presence means the listings
	// have rendered.
	ContentMarker   string
	ContentTimeout  time.Duration
	SettleDelay     time.Duration
	NavigateTimeout time.Duration

	UserAgent string
	// Headers are sent with every request.
	Headers   map[string]string
	Headless  bool
	ExecPath  string

	Proxies *proxy.Pool
	Limiter ratelimit.Limiter
	Session *auth.Session

	// StartRetry bounds browser session start attempts. Pages themselves
	// are never retried.
	StartRetry retry.Config
}

func (o *Options) applyDefaults() {
	if o.ContentTimeout <= 0 {
		o.ContentTimeout = DefaultContentTimeout
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = DefaultNavigateTimeout
	}
	if o.StartRetry.MaxAttempts <= 0 {
		o.StartRetry = retry.DefaultConfig()
	}
}

func (o *Options) wait(ctx context.Context, url string) error {
	if o.Limiter == nil {
		return nil
	}
	return o.Limiter.Wait(ctx, url)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
