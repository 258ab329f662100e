package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// CaptureOptions configures an interactive session capture
type CaptureOptions struct {
	Name string
	URL  string
	// WaitSelector ends the capture once it is visible. When empty the user
	// confirms with Enter on In.
	WaitSelector string
	ExecPath     string
	UserAgent    string
	Timeout      time.Duration

	In  io.Reader
	Out io.Writer
}

// Capture opens a visible browser on opts.URL, lets the user pass any
// challenge or log in, and returns the resulting cookies as a session.
func Capture(ctx context.Context, opts CaptureOptions) (*Session, error) {
	if err := validName(opts.Name); err != nil {
		return nil, err
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	defer browserCancel()

	log.Info().Str("session", opts.Name).Str("url", opts.URL).Msg("Starting session capture")
	if err := chromedp.Run(browserCtx, network.Enable(), chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if opts.WaitSelector != "" {
		fmt.Fprintf(opts.Out, "Waiting for %s to appear...\n", opts.WaitSelector)
		if err := chromedp.Run(browserCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("capture did not complete: %w", err)
		}
	} else {
		fmt.Fprintln(opts.Out, "Press Enter once the page shows listings...")
		if opts.In != nil {
			bufio.NewReader(opts.In).ReadString('\n')
		}
	}

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to extract cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found")
	}
	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies captured")

	session := &Session{
		Name:      opts.Name,
		URL:       opts.URL,
		UserAgent: opts.UserAgent,
		Cookies:   fromBrowser(cookies),
		CreatedAt: time.Now(),
	}
	session.ExpiresAt = latestExpiry(session.Cookies)
	return session, nil
}
