// Package csvfile persists the corpus as a delimited file with a header row
// and no index column, and reads it back for validation.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// ErrMissingHeader is returned when a corpus file has no header row.
var ErrMissingHeader = errors.New("missing header row")

// Writer writes a corpus table to a single CSV file.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting path. Parent directories are created on write.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Load writes the table to a temporary file next to the target and renames
// it into place, so an interrupted run never leaves a truncated corpus.
func (w *Writer) Load(ctx context.Context, corpus domain.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := Encode(tmp, corpus); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename %s: %w", w.path, err)
	}

	w.logger.Info("corpus written", "path", w.path, "rows", corpus.Len(), "columns", len(corpus.Columns))
	return nil
}

// Encode writes the header row followed by one record per row. Null values
// are written as empty fields.
func Encode(out io.Writer, corpus domain.Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(corpus.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(corpus.Columns))
	for i, row := range corpus.Rows {
		for j, col := range corpus.Columns {
			record[j] = row.Field(col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Record is one data line of a corpus file keyed by header name.
type Record struct {
	Line   int
	Fields map[string]string
}

// Read loads a corpus file, returning its header and records.
func Read(path string) ([]string, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses corpus CSV content.
func Decode(in io.Reader) ([]string, []Record, error) {
	all, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, ErrMissingHeader
	}

	header := all[0]
	records := make([]Record, 0, len(all)-1)
	for i, line := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(line) {
				fields[h] = strings.TrimSpace(line[j])
			}
		}
		records = append(records, Record{Line: i + 2, Fields: fields})
	}
	return header, records, nil
}
