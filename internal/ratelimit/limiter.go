// Package ratelimit caps the request rate per host.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter blocks until a request to a URL may proceed.
type Limiter interface {
	Wait(ctx context.Context, urlStr string) error
}

// HostLimiter keeps one token bucket per host. It is a ceiling on top of the
// crawler's randomized pacing, not a replacement for it.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host.
// A non-positive rate disables limiting.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait blocks until the request for urlStr can proceed
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	host := extractHost(urlStr)
	if host == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}
	return hl.limiter(host).Wait(ctx)
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.RLock()
	l, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return l
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if l, ok := hl.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = l
	return l
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
