package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrUnknownColumn is returned when a column name is not part of the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is returned when numeric values are requested from a text column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// missingTokens are cell values treated as missing when loading records.
var missingTokens = []string{"", "NA", "NaN", "N/A", "n/a", "null", "NULL", "<nil>"}

// Table is an ordered collection of named columns backed by a gota DataFrame.
// Methods never modify the receiver; operations that change columns return a new Table.
type Table struct {
	Name string
	df   dataframe.DataFrame
}

// FromRecords builds a table from a header row followed by data rows.
// Short rows are padded with missing cells and long rows are truncated.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return &Table{Name: name}, nil
	}
	header := records[0]
	ncol := len(header)
	if len(records) == 1 {
		cols := make([]series.Series, ncol)
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return nil, fmt.Errorf("build table: %w", df.Err)
		}
		return &Table{Name: name, df: df}, nil
	}
	rows := make([][]string, len(records))
	rows[0] = header
	for i, rec := range records[1:] {
		row := make([]string, ncol)
		copy(row, rec)
		rows[i+1] = row
	}
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Table{Name: name, df: df}, nil
}

// FromFrame wraps an existing DataFrame.
func FromFrame(name string, df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Table{Name: name, df: df}, nil
}

// Frame exposes the underlying DataFrame.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// Names returns column names in table order.
func (t *Table) Names() []string {
	if t.df.Ncol() == 0 {
		return nil
	}
	return t.df.Names()
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if t.df.Ncol() == 0 {
		return 0
	}
	return t.df.Nrow()
}

// Cols returns the number of columns.
func (t *Table) Cols() int { return t.df.Ncol() }

// Has reports whether the table contains a column with the given name.
func (t *Table) Has(name string) bool {
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the named column holds integers or floats.
// Boolean columns are not numeric.
func (t *Table) IsNumeric(name string) bool {
	if !t.Has(name) {
		return false
	}
	switch t.df.Col(name).Type() {
	case series.Int, series.Float:
		return true
	}
	return false
}

// NumericColumns lists numeric column names in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, n := range t.Names() {
		if t.IsNumeric(n) {
			out = append(out, n)
		}
	}
	return out
}

// Floats returns a copy of a numeric column's values; missing cells are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if !t.IsNumeric(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, name)
	}
	return t.df.Col(name).Float(), nil
}

// Missing returns a per-row missing mask for the named column.
func (t *Table) Missing(name string) ([]bool, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	col := t.df.Col(name)
	mask := col.IsNaN()
	if t.IsNumeric(name) {
		for i, v := range col.Float() {
			if math.IsNaN(v) {
				mask[i] = true
			}
		}
	}
	return mask, nil
}

// WithFloats returns a new table in which the named column is replaced by vals.
// The column keeps its position; all other columns are shared unchanged.
func (t *Table) WithFloats(name string, vals []float64) (*Table, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if len(vals) != t.Rows() {
		return nil, fmt.Errorf("column %s: got %d values for %d rows", name, len(vals), t.Rows())
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	df := t.df.Mutate(series.New(cp, series.Float, name))
	if df.Err != nil {
		return nil, fmt.Errorf("replace column %s: %w", name, df.Err)
	}
	return &Table{Name: t.Name, df: df}, nil
}

// Drop returns a new table without the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	if len(names) == 0 {
		return &Table{Name: t.Name, df: t.df}, nil
	}
	for _, n := range names {
		if !t.Has(n) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, n)
		}
	}
	if len(names) == t.Cols() {
		return &Table{Name: t.Name}, nil
	}
	df := t.df.Drop(names)
	if df.Err != nil {
		return nil, fmt.Errorf("drop columns: %w", df.Err)
	}
	return &Table{Name: t.Name, df: df}, nil
}

// WriteCSV writes the table, header first, as comma-separated values.
// Numbers are written in their shortest exact form; missing cells are empty.
func (t *Table) WriteCSV(w io.Writer) error {
	if t.df.Ncol() == 0 {
		return nil
	}
	names := t.Names()
	cols := make([][]string, len(names))
	for j, name := range names {
		col := t.df.Col(name)
		mask, err := t.Missing(name)
		if err != nil {
			return err
		}
		var cells []string
		if t.IsNumeric(name) {
			vals := col.Float()
			cells = make([]string, len(vals))
			for i, v := range vals {
				cells[i] = formatFloat(v)
			}
		} else {
			cells = col.Records()
		}
		for i, miss := range mask {
			if miss {
				cells[i] = ""
			}
		}
		cols[j] = cells
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(names))
	for i := 0; i < t.Rows(); i++ {
		for j := range cols {
			row[j] = cols[j][i]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// formatFloat prints v without exponent for ordinary magnitudes and in
// shortest exponent form otherwise. Both round-trip through ParseFloat.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if a := math.Abs(v); a == 0 || (a >= 1e-4 && a < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
