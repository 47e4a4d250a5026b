package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// FileName is the NYC Open Data export the loader reads.
const FileName = "NYC_Free_Public_WiFi_03292017.csv"

// Source implements ports.HotspotSource over a CSV file on disk.
type Source struct {
	path string
}

// New returns a Source reading FileName from dir. An empty dir means the
// working directory.
func New(dir string) *Source {
	return &Source{path: filepath.Join(dir, FileName)}
}

// NewWithPath returns a Source reading an explicit file.
func NewWithPath(path string) *Source {
	return &Source{path: path}
}

// Path returns the file the source reads.
func (s *Source) Path() string { return s.path }

// Load reads the whole file. Every column is kept as text; the first line is
// the header.
func (s *Source) Load(ctx context.Context) (*domain.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return Read(ctx, f)
}

// Read parses CSV from r into a Dataset.
func Read(ctx context.Context, r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Dataset{Rows: []domain.Row{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := cleanHeader(header)
	// Rows may be ragged; missing trailing fields read as empty.
	reader.FieldsPerRecord = -1

	ds := &domain.Dataset{Columns: columns, Rows: make([]domain.Row, 0, 1024)}
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func cleanHeader(header []string) []string {
	cols := make([]string, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		cols[i] = strings.TrimSpace(col)
	}
	return cols
}
