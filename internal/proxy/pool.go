// Package proxy rotates browser sessions across a list of upstream proxies.
package proxy

import (
	"strings"
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Pool hands out proxies round-robin and skips those that failed recently.
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	mu       sync.Mutex
	failed   map[string]time.Time
	now      func() time.Time
}

// Parse splits a comma separated proxy list, dropping blanks.
func Parse(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewPool creates a pool. A non-positive cooldown uses DefaultCooldown.
func NewPool(proxies []string, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pool{
		proxies:  proxies,
		cooldown: cooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// Next returns the next healthy proxy, or "" for a direct connection when the
// pool is empty. When every proxy is cooling down, the one that failed
// longest ago is returned.
func (p *Pool) Next() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	var oldest string
	var oldestAt time.Time
	for i := 0; i < len(p.proxies); i++ {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, ok := p.failed[proxy]
		if !ok {
			return proxy
		}
		if p.now().Sub(failedAt) >= p.cooldown {
			delete(p.failed, proxy)
			return proxy
		}
		if oldest == "" || failedAt.Before(oldestAt) {
			oldest, oldestAt = proxy, failedAt
		}
	}
	return oldest
}

// MarkFailed puts proxy on cooldown
func (p *Pool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
