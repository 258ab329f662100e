package store

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

const delimiter = ';'

// utf8BOM is written once at the start of a new file so spreadsheet tools
// detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVFile is the append-only backing file of the store.
type CSVFile struct {
	path string
}

// NewCSVFile returns a handle to the output file at path. The file is created
// lazily on the first append.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Path returns the backing file path.
func (f *CSVFile) Path() string {
	return f.path
}

// Keys reads the link column of an existing file. A missing, unreadable or
// headerless file yields whatever keys could be read before the failure.
func (f *CSVFile) Keys() map[string]struct{} {
	keys := make(map[string]struct{})

	file, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("file", f.path).Msg("Existing output unreadable, starting with an empty index")
		}
		return keys
	}
	defer file.Close()

	br := bufio.NewReader(file)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err != io.EOF {
			log.Warn().Err(err).Str("file", f.path).Msg("Failed to read output header")
		}
		return keys
	}
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == models.LinkColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Warn().Str("file", f.path).Msg("Output has no link column, starting with an empty index")
		return keys
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Str("file", f.path).Int("keys", len(keys)).Msg("Stopped reading output early")
			break
		}
		if len(row) <= idx {
			continue
		}
		if link := row[idx]; link != "" {
			keys[link] = struct{}{}
		}
	}
	return keys
}

// Append writes records to the end of the file in a single write, preceded by
// the BOM and header when the file is new or empty. Existing content is never
// rewritten.
func (f *CSVFile) Append(records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat output: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter
	if info.Size() > 0 && !f.endsWithNewline(info.Size()) {
		// close off a row torn by an earlier crash
		buf.WriteByte('\n')
	}
	if info.Size() == 0 {
		buf.Write(utf8BOM)
		if err := w.Write(models.Header); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append records: %w", err)
	}
	return file.Sync()
}

func (f *CSVFile) endsWithNewline(size int64) bool {
	file, err := os.Open(f.path)
	if err != nil {
		return true
	}
	defer file.Close()
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, size-1); err != nil {
		return true
	}
	return last[0] == '\n'
}
