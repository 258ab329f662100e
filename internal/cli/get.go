package cli

import (
	"fmt"
	"strings"

	"github.com/law-makers/listcrawl/internal/utils/output"
	urlutil "github.com/law-makers/listcrawl/internal/utils/url"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	getFormat  string
	getSection string
)

// getCmd fetches a single listing page and prints what the extractor sees.
var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Fetch one listing page and print its records",
	Long: `Fetches a single listing page with the configured fetcher, runs the record
extractor and pagination probe on it and prints the result. Nothing is written
to the output file. Useful for checking selectors against the live markup.`,
	Example: `  # Records from one page as a table
  listcrawl get "https://www.avito.ru/moskva/avtomobili/bmw?cd=1"

  # Same page as JSON, trying another seller name selector
  listcrawl get "https://www.avito.ru/moskva/avtomobili/bmw?cd=1&p=2" --format json \
    --seller-name-selector "a[data-marker='seller-link/link']"`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getFormat, "format", "f", output.FormatTable, "Output format: table, json or csv")
	getCmd.Flags().StringVar(&getSection, "section", "", "Section name recorded in the brand column")
}

func runGet(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	pageURL := strings.TrimSpace(args[0])
	if err := urlutil.ValidateURL(pageURL); err != nil {
		return err
	}
	ctx := cmd.Context()

	parser, err := a.Parser()
	if err != nil {
		return err
	}
	f, err := a.OpenFetcher(ctx)
	if err != nil {
		return err
	}

	markup, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	section := getSection
	if section == "" {
		section = "N/A"
	}
	records, err := parser.Records(section, markup)
	if err != nil {
		return err
	}
	log.Info().
		Int("records", len(records)).
		Int("pages", parser.MaxPage(markup)).
		Msg("Page extracted")

	return output.Records(cmd.OutOrStdout(), records, getFormat)
}
