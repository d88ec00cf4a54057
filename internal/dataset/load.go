package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how tabular files are read.
type Options struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0 it is the counterpart of a
	// ',' or '.' ThousandsSeparator, or auto-detected per value when neither is set.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// Load reads a CSV/TSV or XLSX file, choosing the reader by extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited text file whose first row is the header.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(filepath.Base(path), f, opt, sniffDelimiter(path))
}

// ReadCSV reads delimited records from r. fallback is used when opt.Delimiter is unset.
func ReadCSV(name string, r io.Reader, opt Options, fallback rune) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = fallback
	}
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	records := [][]string{trimAll(header)}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}
		if opt.MaxRows > 0 && len(records)-1 >= opt.MaxRows {
			break
		}
		records = append(records, trimAll(rec))
	}
	normalizeColumns(records, opt)
	return FromRecords(name, records)
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
