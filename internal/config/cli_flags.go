package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// RegisterFlags registers the flags shared by every command on the root
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Log in JSON format and disable progress bars")
	pf.String("config", "", "Path to a YAML configuration file")
	pf.String("origin", DefaultOrigin, "Site origin prefixed to relative links")
	pf.String("fetcher", DefaultFetcher, "Page fetcher: browser or http")
	pf.String("proxy", "", "Comma separated HTTP/SOCKS5 proxies, rotated on session start")
	pf.String("user-agent", DefaultUserAgent, "User agent for the browser session")
	pf.String("chrome-path", "", "Chrome executable (auto-detected when empty)")
	pf.Bool("headless", DefaultHeadless, "Run Chrome headless")
	pf.String("session", "", "Saved session whose cookies are injected before crawling")
	pf.String("content-marker", DefaultContentMarker, "Selector that must appear before a page is read")
	pf.Duration("content-timeout", DefaultContentTimeout, "Maximum wait for the content marker")
	pf.Duration("settle-delay", DefaultSettleDelay, "Pause after the content marker appears")
	pf.Duration("navigate-timeout", DefaultNavigateTimeout, "Navigation and session setup timeout")
	pf.Int("start-attempts", DefaultStartAttempts, "Browser session start attempts")
	pf.Float64("rate-limit", DefaultRateLimitRPS, "Maximum requests per second per host (0 disables)")
	pf.Int("rate-burst", DefaultRateLimitBurst, "Rate limiter burst")
	pf.String("seller-name-selector", DefaultSellerNameSelector, "Selector for the seller name inside the seller block")
	pf.String("link-selector", DefaultLinkSelector, "Selector for section links in the sections fragment")
	pf.StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
}

// RegisterCrawlFlags registers flags used only by the crawl command
func RegisterCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("sections", "s", DefaultSectionsFile, "HTML fragment listing the catalog sections")
	f.StringP("output", "o", DefaultOutputPath, "CSV file records are appended to")
	f.String("only", "", "Comma separated section names to crawl (default all)")
	f.Int("max-pages", 0, "Maximum pages per section (0 = all)")
	f.Duration("probe-delay-min", DefaultProbeDelayMin, "Minimum pause after probing a section")
	f.Duration("probe-delay-max", DefaultProbeDelayMax, "Maximum pause after probing a section")
	f.Duration("page-delay-min", DefaultPageDelayMin, "Minimum pause after each page")
	f.Duration("page-delay-max", DefaultPageDelayMax, "Maximum pause after each page")
	f.String("postgres-dsn", "", "Mirror appended records into PostgreSQL")
	f.String("postgres-table", DefaultPostgresTable, "PostgreSQL mirror table")
	f.String("redis-addr", "", "Keep the dedup index in Redis at this address")
	f.String("redis-key", DefaultRedisKey, "Redis set holding persisted links")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

// applyFlags copies explicitly set flags onto c. Flags left at their
// defaults do not override the file or environment.
func applyFlags(c *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	for name, set := range bindings(c) {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := set(f.Value.String()); err != nil {
			return fmt.Errorf("invalid --%s: %w", name, err)
		}
	}

	if f := flags.Lookup("header"); f != nil && f.Changed {
		h, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		c.Headers = h
	}

	if v, err := flags.GetBool("verbose"); err == nil && v {
		c.LogLevel = "debug"
	}
	if q, err := flags.GetBool("quiet"); err == nil && q {
		c.LogLevel = "error"
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}
