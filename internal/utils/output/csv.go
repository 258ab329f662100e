package output

import (
	"encoding/csv"
	"io"

	"github.com/law-makers/listcrawl/pkg/models"
)

// WriteCSV writes records with the output file's header and delimiter but
// without the BOM, for piping into other tools.
func WriteCSV(w io.Writer, records []models.Record) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(models.Header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(rec.Row()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
