package config

import (
	"fmt"
	"time"

	"github.com/law-makers/listcrawl/internal/utils/headers"
	urlutil "github.com/law-makers/listcrawl/internal/utils/url"
	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	if err := urlutil.ValidateURL(c.Origin); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.Fetcher != FetcherBrowser && c.Fetcher != FetcherHTTP {
		return fmt.Errorf("fetcher must be %q or %q, got %q", FetcherBrowser, FetcherHTTP, c.Fetcher)
	}
	if c.ContentTimeout <= 0 {
		return fmt.Errorf("content timeout must be > 0")
	}
	if c.NavigateTimeout <= 0 {
		return fmt.Errorf("navigate timeout must be > 0")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be >= 0")
	}
	if err := validRange("probe delay", c.ProbeDelayMin, c.ProbeDelayMax); err != nil {
		return err
	}
	if err := validRange("page delay", c.PageDelayMin, c.PageDelayMax); err != nil {
		return err
	}
	if c.StartAttempts < 1 {
		return fmt.Errorf("start attempts must be >= 1")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0")
	}
	if _, err := headers.Parse(c.Headers); err != nil {
		return err
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	return nil
}

func validRange(name string, min, max time.Duration) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	if min > max {
		return fmt.Errorf("%s range is inverted: %s > %s", name, min, max)
	}
	return nil
}
