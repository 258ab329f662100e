package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type setter func(string) error

func str(p *string) setter {
	return func(v string) error { *p = v; return nil }
}

func list(p *[]string) setter {
	return func(v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*p = out
		return nil
	}
}

func dur(p *time.Duration) setter {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	}
}

func integer(p *int) setter {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
}

func float(p *float64) setter {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*p = f
		return nil
	}
}

func boolean(p *bool) setter {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}
}

// bindings maps each setting name to its field. Flags use the name as is;
// environment variables use EnvPrefix plus the upper-cased name with dashes
// turned into underscores.
func bindings(c *Config) map[string]setter {
	return map[string]setter{
		"log-level":            str(&c.LogLevel),
		"json":                 boolean(&c.JSONLog),
		"origin":               str(&c.Origin),
		"sections":             str(&c.SectionsFile),
		"link-selector":        str(&c.LinkSelector),
		"only":                 list(&c.Only),
		"output":               str(&c.OutputPath),
		"fetcher":              str(&c.Fetcher),
		"content-marker":       str(&c.ContentMarker),
		"content-timeout":      dur(&c.ContentTimeout),
		"settle-delay":         dur(&c.SettleDelay),
		"navigate-timeout":     dur(&c.NavigateTimeout),
		"user-agent":           str(&c.UserAgent),
		"proxy":                str(&c.Proxy),
		"headless":             boolean(&c.Headless),
		"chrome-path":          str(&c.ChromePath),
		"start-attempts":       integer(&c.StartAttempts),
		"session":              str(&c.SessionName),
		"probe-delay-min":      dur(&c.ProbeDelayMin),
		"probe-delay-max":      dur(&c.ProbeDelayMax),
		"page-delay-min":       dur(&c.PageDelayMin),
		"page-delay-max":       dur(&c.PageDelayMax),
		"rate-limit":           float(&c.RateLimitRPS),
		"rate-burst":           integer(&c.RateLimitBurst),
		"max-pages":            integer(&c.MaxPages),
		"seller-name-selector": str(&c.SellerNameSelector),
		"postgres-dsn":         str(&c.PostgresDSN),
		"postgres-table":       str(&c.PostgresTable),
		"redis-addr":           str(&c.RedisAddr),
		"redis-key":            str(&c.RedisKey),
		"metrics-addr":         str(&c.MetricsAddr),
	}
}

// EnvName returns the environment variable for a setting.
func EnvName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for name, set := range bindings(c) {
		v, ok := lookup(EnvName(name))
		if !ok || v == "" {
			continue
		}
		if err := set(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvName(name), err)
		}
	}
	return nil
}
