package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/listcrawl/internal/app"
	"github.com/law-makers/listcrawl/internal/config"
	"github.com/law-makers/listcrawl/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listcrawl",
	Short: "Incremental crawler for classified listing catalogs",
	Long: `listcrawl walks every section of a classifieds catalog page by page in a
headless browser, extracts one record per listing and appends new records to a
semicolon separated CSV file. Records already in the file are skipped, so an
interrupted crawl can simply be run again.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// configureApp adjusts each freshly built application before the command runs.
var configureApp func(*app.Application)

// ExecuteContext runs the CLI. Cancelling ctx (e.g. on SIGINT) stops a crawl
// between pages.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// The application is built lazily so -h and --version stay cheap.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		if cfg.JSONLog {
			ui.SetPlain(true)
		}
		if configureApp != nil {
			configureApp(a)
		}
		SetApp(cmd, a)
		return nil
	}
}
