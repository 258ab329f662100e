// Package output renders records and sections for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/law-makers/listcrawl/pkg/models"
)

// Formats accepted by Records and Sections
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Records renders records in the given format.
func Records(w io.Writer, records []models.Record, format string) error {
	switch format {
	case FormatJSON:
		if records == nil {
			records = []models.Record{}
		}
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TITLE\tPRICE\tSELLER\tRATING\tREVIEWS\tLINK")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				truncate(r.Title, 40), r.Price, truncate(r.SellerName, 24), r.Rating, r.ReviewsCount, r.Link)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Sections renders discovered sections in the given format.
func Sections(w io.Writer, sections []models.Section, format string) error {
	switch format {
	case FormatJSON:
		if sections == nil {
			sections = []models.Section{}
		}
		return WriteJSON(w, sections)
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tURL")
		for _, s := range sections {
			fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.URL)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
