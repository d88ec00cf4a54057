package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

// inputFlags are the loading flags shared by every command that reads a dataset.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited; overrides config)")
}

func (f *inputFlags) options(cmd *cobra.Command) (dataset.Options, error) {
	opt := dataset.Options{
		MaxRows:    settings().MaxRows,
		SheetName:  f.sheetName,
		SheetIndex: f.sheetIndex,
	}
	if cmd.Flags().Changed("max-rows") {
		opt.MaxRows = f.maxRows
	}
	if opt.MaxRows < 0 {
		return opt, fmt.Errorf("--max-rows must be >= 0")
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

func (f *inputFlags) load(cmd *cobra.Command, path string) (*dataset.Table, error) {
	opt, err := f.options(cmd)
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// writeTable writes t as CSV to path.
func writeTable(t *dataset.Table, path string) error {
	var b strings.Builder
	if err := t.WriteCSV(&b); err != nil {
		return err
	}
	return writeOutput(path, []byte(b.String()))
}

// writeOutput writes data to path, creating the parent directory.
func writeOutput(path string, data []byte) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
