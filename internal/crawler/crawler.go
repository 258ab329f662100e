// Package crawler walks every section page by page and feeds the extracted
// records into the store.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/law-makers/listcrawl/internal/cursor"
	"github.com/law-makers/listcrawl/internal/fetch"
	"github.com/law-makers/listcrawl/internal/metrics"
	urlutil "github.com/law-makers/listcrawl/internal/utils/url"
	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Extractor reads records and the page count out of listing markup.
type Extractor interface {
	Records(section, markup string) ([]models.Record, error)
	MaxPage(markup string) int
}

// Appender persists records it has not seen before and reports how many
// were written.
type Appender interface {
	Append(ctx context.Context, records []models.Record) (int, error)
}

// Delay is an inclusive range a pause is drawn from uniformly.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

func (d Delay) pick(r *rand.Rand) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(r.Int63n(int64(d.Max-d.Min)+1))
}

// Options tunes pacing and reporting. Zero delays mean no pause.
type Options struct {
	// ProbeDelay is waited after fetching a section's first page.
	ProbeDelay Delay
	// PageDelay is waited after every page attempt, successful or not.
	PageDelay Delay
	// MaxPages caps the probed page count per section; 0 means no cap.
	MaxPages int

	Metrics *metrics.Metrics
	// Progress receives one progress bar per section; nil disables them.
	Progress io.Writer

	Sleep func(ctx context.Context, d time.Duration) error
	Rand  *rand.Rand
}

// Summary counts what a run did.
type Summary struct {
	Sections       int
	Pages          int
	PagesNoContent int
	PagesFailed    int
	Extracted      int
	Appended       int
	Duplicates     int
	Elapsed        time.Duration
}

// Crawler drives one fetcher through sections sequentially.
type Crawler struct {
	fetcher   fetch.Fetcher
	extractor Extractor
	store     Appender
	opts      Options
}

// New creates a Crawler
func New(f fetch.Fetcher, ex Extractor, store Appender, opts Options) *Crawler {
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Crawler{
		fetcher:   f,
		extractor: ex,
		store:     store,
		opts:      opts,
	}
}

// Run crawls the sections in order. Page failures are logged and skipped;
// Run only returns early when ctx is done or the browser session cannot be
// restarted.
func (c *Crawler) Run(ctx context.Context, sections []models.Section) (Summary, error) {
	start := time.Now()
	var sum Summary

	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}
		if err := c.crawlSection(ctx, sec, &sum); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}
	}

	sum.Elapsed = time.Since(start)
	log.Info().
		Int("sections", sum.Sections).
		Int("pages", sum.Pages).
		Int("no_content", sum.PagesNoContent).
		Int("failed", sum.PagesFailed).
		Int("appended", sum.Appended).
		Dur("elapsed", sum.Elapsed).
		Msg("Crawl finished")
	return sum, nil
}

func (c *Crawler) crawlSection(ctx context.Context, sec models.Section, sum *Summary) error {
	logger := log.With().Str("section", sec.Name).Logger()

	pages, err := c.probe(ctx, sec)
	if err != nil {
		return err
	}
	if c.opts.MaxPages > 0 && pages > c.opts.MaxPages {
		logger.Debug().Int("probed", pages).Int("cap", c.opts.MaxPages).Msg("Page count capped")
		pages = c.opts.MaxPages
	}
	logger.Info().Int("pages", pages).Str("url", sec.URL).Msg("Crawling section")

	bar := c.progress(sec.Name, pages)
	for n := 1; n <= pages; n++ {
		if err := c.page(ctx, sec, n, sum); err != nil {
			return err
		}
		bar.Add(1)
		if err := c.opts.Sleep(ctx, c.opts.PageDelay.pick(c.opts.Rand)); err != nil {
			return err
		}
	}
	bar.Finish()

	sum.Sections++
	c.opts.Metrics.SectionDone()
	return nil
}

// probe fetches the section's landing page, waits the probe delay and then
// reads the page count. A failed fetch degrades to a single page.
func (c *Crawler) probe(ctx context.Context, sec models.Section) (pages int, err error) {
	ctx = cursor.With(ctx, sec.Name, 0)
	logger := cursor.Logger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Probe panicked, assuming one page")
			pages, err = 1, nil
		}
	}()

	markup, fetchErr := c.fetcher.Fetch(ctx, sec.URL)
	if fetchErr != nil && fatal(ctx, fetchErr) {
		return 0, fetchErr
	}
	if err := c.opts.Sleep(ctx, c.opts.ProbeDelay.pick(c.opts.Rand)); err != nil {
		return 0, err
	}
	if fetchErr != nil {
		logger.Warn().Err(fetchErr).Msg("Probe fetch failed, assuming one page")
		return 1, nil
	}
	return c.extractor.MaxPage(markup), nil
}

// page handles one page attempt. Only fatal errors are returned; everything
// else is logged and counted.
func (c *Crawler) page(ctx context.Context, sec models.Section, n int, sum *Summary) (err error) {
	ctx = cursor.With(ctx, sec.Name, n)
	logger := cursor.Logger(ctx)
	url := urlutil.WithPage(sec.URL, n)
	start := time.Now()

	sum.Pages++
	defer func() {
		if r := recover(); r != nil {
			sum.PagesFailed++
			c.opts.Metrics.ObservePage(metrics.OutcomeError, time.Since(start))
			logger.Error().Err(cursor.Wrap(ctx, fmt.Errorf("panic: %v", r))).Msg("Page panicked")
			err = nil
		}
	}()

	markup, err := c.fetcher.Fetch(ctx, url)
	switch {
	case err == nil:
	case fetch.IsNoContent(err):
		sum.PagesNoContent++
		c.opts.Metrics.ObservePage(metrics.OutcomeNoContent, time.Since(start))
		logger.Info().Str("url", url).Msg("No listings on page, skipping")
		return nil
	case fatal(ctx, err):
		return err
	default:
		sum.PagesFailed++
		c.opts.Metrics.ObservePage(metrics.OutcomeError, time.Since(start))
		logger.Warn().Err(cursor.Wrap(ctx, err)).Str("url", url).Msg("Page fetch failed")
		return nil
	}
	c.opts.Metrics.ObservePage(metrics.OutcomeOK, time.Since(start))

	records, err := c.extractor.Records(sec.Name, markup)
	if err != nil {
		sum.PagesFailed++
		logger.Warn().Err(cursor.Wrap(ctx, err)).Msg("Extraction failed")
		return nil
	}
	sum.Extracted += len(records)
	c.opts.Metrics.AddExtracted(len(records))

	keyed := records[:0]
	for _, rec := range records {
		if rec.HasKey() {
			keyed = append(keyed, rec)
		}
	}

	appended, err := c.store.Append(ctx, keyed)
	sum.Appended += appended
	if err != nil {
		sum.PagesFailed++
		logger.Error().Err(cursor.Wrap(ctx, err)).Msg("Failed to persist records")
		return nil
	}
	sum.Duplicates += len(keyed) - appended

	logger.Debug().
		Int("extracted", len(records)).
		Int("appended", appended).
		Dur("elapsed", time.Since(start)).
		Msg("Page done")
	return nil
}

// fatal reports whether err must stop the run.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, fetch.ErrSessionStart)
}

func (c *Crawler) progress(name string, pages int) *progressbar.ProgressBar {
	if c.opts.Progress == nil {
		return progressbar.DefaultSilent(int64(pages))
	}
	return progressbar.NewOptions(pages,
		progressbar.OptionSetWriter(c.opts.Progress),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(c.opts.Progress) }),
	)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
