package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Input and output
	Origin       string   `yaml:"origin"`
	SectionsFile string   `yaml:"sections_file"`
	LinkSelector string   `yaml:"link_selector"`
	Only         []string `yaml:"only"`
	OutputPath   string   `yaml:"output"`

	// Fetching
	Fetcher         string        `yaml:"fetcher"`
	ContentMarker   string        `yaml:"content_marker"`
	ContentTimeout  time.Duration `yaml:"content_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
	UserAgent       string        `yaml:"user_agent"`
	Proxy           string        `yaml:"proxy"`
	Headless        bool          `yaml:"headless"`
	ChromePath      string        `yaml:"chrome_path"`
	StartAttempts   int           `yaml:"start_attempts"`
	SessionName     string        `yaml:"session"`
	Headers         []string      `yaml:"headers"`

	// Pacing
	ProbeDelayMin  time.Duration `yaml:"probe_delay_min"`
	ProbeDelayMax  time.Duration `yaml:"probe_delay_max"`
	PageDelayMin   time.Duration `yaml:"page_delay_min"`
	PageDelayMax   time.Duration `yaml:"page_delay_max"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	MaxPages       int           `yaml:"max_pages"`

	// Extraction
	SellerNameSelector string `yaml:"seller_name_selector"`

	// Optional backends
	PostgresDSN   string `yaml:"postgres_dsn"`
	PostgresTable string `yaml:"postgres_table"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisKey      string `yaml:"redis_key"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

// Defaults returns a Config populated with the default values.
func Defaults() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		Origin:             DefaultOrigin,
		SectionsFile:       DefaultSectionsFile,
		LinkSelector:       DefaultLinkSelector,
		OutputPath:         DefaultOutputPath,
		Fetcher:            DefaultFetcher,
		ContentMarker:      DefaultContentMarker,
		ContentTimeout:     DefaultContentTimeout,
		SettleDelay:        DefaultSettleDelay,
		NavigateTimeout:    DefaultNavigateTimeout,
		UserAgent:          DefaultUserAgent,
		Headless:           DefaultHeadless,
		StartAttempts:      DefaultStartAttempts,
		ProbeDelayMin:      DefaultProbeDelayMin,
		ProbeDelayMax:      DefaultProbeDelayMax,
		PageDelayMin:       DefaultPageDelayMin,
		PageDelayMax:       DefaultPageDelayMax,
		RateLimitRPS:       DefaultRateLimitRPS,
		RateLimitBurst:     DefaultRateLimitBurst,
		SellerNameSelector: DefaultSellerNameSelector,
		PostgresTable:      DefaultPostgresTable,
		RedisKey:           DefaultRedisKey,
	}
}

// Load builds a Config by layering defaults, an optional YAML file,
// LISTCRAWL_* environment variables and explicitly set CLI flags, in that
// order. Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
