package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/law-makers/listcrawl/internal/config"
	"github.com/law-makers/listcrawl/internal/crawler"
	"github.com/law-makers/listcrawl/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl every section and append new listings to the CSV file",
	Long: `Visits each section from the sections fragment, probes how many pages it
has and walks them in order with randomized pauses. Each page's listings are
appended to the output file unless their link is already present, so repeated
runs only add what is new.

Pages that never show listings (e.g. a captcha) are logged and skipped. The
run only fails if the browser session cannot be started.`,
	Example: `  # Crawl all sections into listings.csv
  listcrawl crawl --sections popular.html

  # Two sections, at most 3 pages each, through a rotating proxy list
  listcrawl crawl --only "Sedan,Coupe" --max-pages 3 --proxy http://p1:8080,http://p2:8080

  # Reuse cookies from a captured session and expose metrics
  listcrawl crawl --session avito --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	config.RegisterCrawlFlags(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	cfg := a.Config
	ctx := cmd.Context()

	sections, err := loadSections(cfg)
	if err != nil {
		return err
	}
	parser, err := a.Parser()
	if err != nil {
		return err
	}
	st, err := a.OpenStore(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("sections", len(sections)).
		Str("output", st.Path()).
		Int("known_links", st.Len(ctx)).
		Msg("Starting crawl")

	f, err := a.OpenFetcher(ctx)
	if err != nil {
		return err
	}

	var progress io.Writer
	if !cfg.JSONLog && cfg.LogLevel != "error" {
		progress = os.Stderr
	}

	c := crawler.New(f, parser, st, crawler.Options{
		ProbeDelay: crawler.Delay{Min: cfg.ProbeDelayMin, Max: cfg.ProbeDelayMax},
		PageDelay:  crawler.Delay{Min: cfg.PageDelayMin, Max: cfg.PageDelayMax},
		MaxPages:   cfg.MaxPages,
		Metrics:    a.Metrics,
		Progress:   progress,
	})

	sum, err := c.Run(ctx, sections)
	if cfg.LogLevel != "error" {
		printSummary(cmd.OutOrStdout(), sum, st.Path())
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("Crawl interrupted, appended records are kept")
		return nil
	}
	return err
}

func printSummary(w io.Writer, s crawler.Summary, path string) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Crawl summary"))
	fmt.Fprintf(w, "  Sections completed  %d\n", s.Sections)
	fmt.Fprintf(w, "  Pages               %d (%s without listings, %s failed)\n", s.Pages, ui.Count(s.PagesNoContent), ui.Count(s.PagesFailed))
	fmt.Fprintf(w, "  Records extracted   %d\n", s.Extracted)
	fmt.Fprintf(w, "  New records         %s\n", ui.Success(fmt.Sprint(s.Appended)))
	fmt.Fprintf(w, "  Already known       %s\n", ui.Info(fmt.Sprint(s.Duplicates)))
	fmt.Fprintf(w, "  Output              %s\n", path)
	fmt.Fprintf(w, "  Elapsed             %s\n\n", s.Elapsed.Round(time.Second))
}
