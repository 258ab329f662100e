// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/law-makers/listcrawl/internal/auth"
	"github.com/law-makers/listcrawl/internal/config"
	"github.com/law-makers/listcrawl/internal/fetch"
	"github.com/law-makers/listcrawl/internal/listing"
	"github.com/law-makers/listcrawl/internal/metrics"
	"github.com/law-makers/listcrawl/internal/proxy"
	"github.com/law-makers/listcrawl/internal/ratelimit"
	"github.com/law-makers/listcrawl/internal/retry"
	"github.com/law-makers/listcrawl/internal/store"
	"github.com/law-makers/listcrawl/internal/utils/headers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds the dependencies shared by all commands.
//
// It is created once per command run. Heavy resources (the browser session,
// the store backends) are opened on demand by the command that needs them;
// Close releases whatever was opened.
type Application struct {
	Config  *config.Config
	Logger  *zerolog.Logger
	Limiter *ratelimit.HostLimiter
	Proxies *proxy.Pool
	Metrics *metrics.Metrics

	// NewFetcher, when set, replaces the configured fetcher constructor.
	NewFetcher func(ctx context.Context, opts fetch.Options) (fetch.Fetcher, error)

	closers   []io.Closer
	startTime time.Time
}

// New configures logging and builds the lightweight dependencies.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := SetupLogging(cfg, os.Stderr)

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Limiter:   ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Proxies:   proxy.NewPool(proxy.Parse(cfg.Proxy), proxy.DefaultCooldown),
		Metrics:   metrics.New(),
		startTime: time.Now(),
	}

	if cfg.MetricsAddr != "" {
		a.Metrics.Serve(ctx, cfg.MetricsAddr)
	}

	logger.Debug().
		Str("fetcher", cfg.Fetcher).
		Int("proxies", a.Proxies.Len()).
		Float64("rps", cfg.RateLimitRPS).
		Msg("Application initialized")
	return a, nil
}

// SetupLogging configures the global zerolog logger from cfg.
func SetupLogging(cfg *config.Config, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JSONLog {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	return &log.Logger
}

// Parser builds the listing parser from the configured selectors.
func (a *Application) Parser() (*listing.Parser, error) {
	sel := listing.DefaultSelectors()
	if a.Config.SellerNameSelector != "" {
		sel.SellerName = a.Config.SellerNameSelector
	}
	return listing.NewParser(a.Config.Origin, sel)
}

// LoadSession returns the configured saved session, or nil when none is set.
func (a *Application) LoadSession() (*auth.Session, error) {
	if a.Config.SessionName == "" {
		return nil, nil
	}
	sessions, err := auth.NewStore("")
	if err != nil {
		return nil, err
	}
	s, err := sessions.Load(a.Config.SessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", a.Config.SessionName, err)
	}
	log.Info().Str("session", s.Name).Int("cookies", len(s.Cookies)).Msg("Using saved session")
	return s, nil
}

// OpenFetcher starts the configured fetcher. For the browser this launches the
// session, which is the one step whose failure aborts a run.
func (a *Application) OpenFetcher(ctx context.Context) (fetch.Fetcher, error) {
	cfg := a.Config
	session, err := a.LoadSession()
	if err != nil {
		return nil, err
	}

	hdrs, err := headers.Parse(cfg.Headers)
	if err != nil {
		return nil, err
	}

	start := retry.DefaultConfig()
	start.MaxAttempts = cfg.StartAttempts

	opts := fetch.Options{
		ContentMarker:   cfg.ContentMarker,
		ContentTimeout:  cfg.ContentTimeout,
		SettleDelay:     cfg.SettleDelay,
		NavigateTimeout: cfg.NavigateTimeout,
		UserAgent:       cfg.UserAgent,
		Headers:         hdrs,
		Headless:        cfg.Headless,
		ExecPath:        fetch.FindChrome(cfg.ChromePath),
		Proxies:         a.Proxies,
		Limiter:         a.Limiter,
		Session:         session,
		StartRetry:      start,
	}

	var f fetch.Fetcher
	switch {
	case a.NewFetcher != nil:
		f, err = a.NewFetcher(ctx, opts)
	case cfg.Fetcher == config.FetcherHTTP:
		f, err = fetch.NewHTTP(opts)
	default:
		f, err = fetch.NewBrowser(ctx, opts)
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, f)
	return f, nil
}

// OpenStore opens the output file with the optional Redis index and Postgres
// mirror.
func (a *Application) OpenStore(ctx context.Context) (*store.Store, error) {
	cfg := a.Config
	opts := store.Options{Metrics: a.Metrics}

	if cfg.RedisAddr != "" {
		idx, err := store.NewRedisIndex(ctx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		opts.Index = idx
	}
	if cfg.PostgresDSN != "" {
		sink, err := store.NewPostgresSink(ctx, cfg.PostgresDSN, cfg.PostgresTable)
		if err != nil {
			if opts.Index != nil {
				opts.Index.Close()
			}
			return nil, err
		}
		opts.Mirrors = append(opts.Mirrors, sink)
	}

	s, err := store.Open(ctx, cfg.OutputPath, opts)
	if err != nil {
		for _, m := range opts.Mirrors {
			m.Close()
		}
		if opts.Index != nil {
			opts.Index.Close()
		}
		return nil, err
	}
	a.closers = append(a.closers, s)
	return s, nil
}

// Close releases everything opened through the application, newest first.
// It is safe to call more than once.
func (a *Application) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error during shutdown")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.closers = nil
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return firstErr
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
