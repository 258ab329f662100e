package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"github.com/law-makers/listcrawl/internal/cursor"
	"github.com/law-makers/listcrawl/internal/retry"
	"github.com/rs/zerolog/log"
)

// Browser renders pages in a single headless Chrome tab that lives for the
// whole crawl. The tab keeps its cookies between pages.
type Browser struct {
	opts Options

	mu          sync.Mutex
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	tab         context.Context
	proxy       string
	closed      bool
}

// NewBrowser starts the browser session, retrying with backoff and rotating
// through the proxy pool. Exhausting the attempts yields ErrSessionStart.
func NewBrowser(ctx context.Context, opts Options) (*Browser, error) {
	opts.applyDefaults()
	if opts.ExecPath == "" {
		opts.ExecPath = FindChrome("")
	}

	b := &Browser{opts: opts}
	if err := b.start(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Browser) allocatorOptions(proxyAddr string) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if b.opts.ExecPath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(b.opts.ExecPath)}, allocOpts...)
	}
	if b.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.opts.UserAgent))
	}
	if b.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if proxyAddr != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxyAddr))
	}
	return allocOpts
}

func (b *Browser) start(ctx context.Context) error {
	err := retry.Do(ctx, b.opts.StartRetry, func(attempt int) error {
		proxyAddr := b.opts.Proxies.Next()
		if err := b.launch(ctx, proxyAddr); err != nil {
			b.opts.Proxies.MarkFailed(proxyAddr)
			log.Warn().Err(err).Int("attempt", attempt+1).Str("proxy", proxyAddr).Msg("Browser session failed to start")
			return err
		}
		b.opts.Proxies.MarkHealthy(proxyAddr)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrSessionStart, err)
	}
	return nil
}

// launch starts Chrome, opens the tab and prepares it: stealth script,
// network domain and any saved session cookies.
func (b *Browser) launch(ctx context.Context, proxyAddr string) error {
	b.shutdown()

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions(proxyAddr)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))

	// The first Run allocates the browser; it must not carry a deadline or
	// the browser would die with it.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to launch chrome: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(tabCtx, b.opts.NavigateTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}),
	}
	if len(b.opts.Headers) > 0 {
		extra := make(network.Headers, len(b.opts.Headers))
		for k, v := range b.opts.Headers {
			extra[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	if s := b.opts.Session; s != nil && len(s.Cookies) > 0 {
		params := s.CookieParams()
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookies(params).Do(ctx)
		}))
		log.Debug().Str("session", s.Name).Int("cookies", len(params)).Msg("Session cookies injected")
	}

	if err := chromedp.Run(setupCtx, actions...); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to prepare tab: %w", err)
	}

	b.allocCancel = allocCancel
	b.tabCancel = tabCancel
	b.tab = tabCtx
	b.proxy = proxyAddr

	log.Info().Str("proxy", proxyAddr).Bool("headless", b.opts.Headless).Msg("Browser session ready")
	return nil
}

// Fetch navigates to url, waits for the content marker and the settle delay,
// and returns the page markup. A navigation that exceeds its timeout is not
// fatal: the marker wait decides whether the page is usable.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrClosed
	}
	if b.tab == nil || b.tab.Err() != nil {
		log.Warn().Str("proxy", b.proxy).Msg("Browser session lost, restarting")
		if err := b.start(ctx); err != nil {
			return "", err
		}
	}
	if err := b.opts.wait(ctx, url); err != nil {
		return "", err
	}

	logger := cursor.Logger(ctx)

	runCtx, cancel := context.WithCancel(b.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	navCtx, navCancel := context.WithTimeout(runCtx, b.opts.NavigateTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	navCancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return "", newError(CodeBrowser, url, err)
		}
		logger.Debug().Str("url", url).Msg("Navigation timed out, waiting for content anyway")
	}

	marker := b.opts.ContentMarker
	if marker == "" {
		marker = "body"
	}
	waitCtx, waitCancel := context.WithTimeout(runCtx, b.opts.ContentTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitReady(marker, chromedp.ByQuery))
	waitCancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(CodeNoContent, url, ErrNoContent)
	}

	if err := sleep(ctx, b.opts.SettleDelay); err != nil {
		return "", err
	}

	var markup string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(CodeBrowser, url, err)
	}
	return markup, nil
}

func (b *Browser) shutdown() {
	if b.tabCancel != nil {
		b.tabCancel()
		b.tabCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.tab = nil
}

// Close ends the browser session. It is safe to call more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.shutdown()
	log.Debug().Msg("Browser session closed")
	return nil
}
