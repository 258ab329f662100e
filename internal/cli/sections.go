package cli

import (
	"fmt"
	"os"

	"github.com/law-makers/listcrawl/internal/catalog"
	"github.com/law-makers/listcrawl/internal/config"
	"github.com/law-makers/listcrawl/internal/utils/output"
	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/spf13/cobra"
)

var sectionsFormat string

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the catalog sections found in a sections fragment",
	Long: `Reads the saved HTML fragment with the catalog's section links and prints
the sections a crawl would visit. No network access is made.`,
	Example: `  # Show sections as a table
  listcrawl sections --sections popular.html

  # Only two sections, as JSON
  listcrawl sections --only "Sedan,Coupe" --format json`,
	Args: cobra.NoArgs,
	RunE: runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)

	sectionsCmd.Flags().StringP("sections", "s", config.DefaultSectionsFile, "HTML fragment listing the catalog sections")
	sectionsCmd.Flags().String("only", "", "Comma separated section names to keep")
	sectionsCmd.Flags().StringVarP(&sectionsFormat, "format", "f", output.FormatTable, "Output format: table or json")
}

func runSections(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	sections, err := loadSections(a.Config)
	if err != nil {
		return err
	}
	return output.Sections(cmd.OutOrStdout(), sections, sectionsFormat)
}

// loadSections reads the sections fragment and applies the name filter.
func loadSections(cfg *config.Config) ([]models.Section, error) {
	data, err := os.ReadFile(cfg.SectionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections file: %w", err)
	}

	all := catalog.Discover(string(data), cfg.Origin, cfg.LinkSelector)
	sections := catalog.Filter(all, cfg.Only)
	if len(sections) == 0 {
		if len(all) > 0 && len(cfg.Only) > 0 {
			return nil, fmt.Errorf("none of the %d sections in %s match %v", len(all), cfg.SectionsFile, cfg.Only)
		}
		return nil, fmt.Errorf("no sections found in %s", cfg.SectionsFile)
	}
	return sections, nil
}
