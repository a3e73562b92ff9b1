package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// RawRow is one loosely-typed source row, keyed by column header. All values
// are the raw cell strings; typing them is the Normalizer's job.
type RawRow map[string]string

// Load reads the tabular dataset at path into raw rows. Files ending in ".gz"
// are transparently decompressed. Columns are mapped by header name, never by
// position, so reordered source files load identically.
func Load(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q: %w", path, err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress dataset %q: %w", path, err)
		}
		defer gz.Close()
		src = gz
	}

	rows, err := ReadRows(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %q: %w", path, err)
	}

	slog.Info("Dataset loaded", "path", path, "rows", len(rows))
	return rows, nil
}

// ReadRows parses CSV data into raw rows. The first record is the header.
// Short rows are tolerated: missing trailing cells read as empty strings,
// which the Normalizer treats per its missing-value policy.
func ReadRows(src io.Reader) ([]RawRow, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // ragged rows are a normalization concern, not a parse error

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []RawRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		row := make(RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
