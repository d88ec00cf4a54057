package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var csvRows = []string{
	"city;population;growth;label;flag",
	"Oslo;1.000,5;12,5%;north;true",
	"Bergen;2.000,0;;west;false",
	"Lyon;NA;3,0%;south;true",
	"Porto;4.500,25;1,5%;;false",
}

func writeCSV(t *testing.T, name string, rows []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadCSVLocaleAndMissing(t *testing.T) {
	path := writeCSV(t, "cities.csv", csvRows)
	tbl, err := LoadCSV(path, Options{Delimiter: ';', DecimalSeparator: ',', ThousandsSeparator: '.'})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Name != "cities.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Rows() != 4 || tbl.Cols() != 5 {
		t.Fatalf("dims = %dx%d, want 4x5", tbl.Rows(), tbl.Cols())
	}
	if got := tbl.NumericColumns(); !equalStrings(got, []string{"population", "growth"}) {
		t.Fatalf("numeric columns = %v", got)
	}
	pop, err := tbl.Floats("population")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if !almostEqual(pop[0], 1000.5, 1e-9) || !almostEqual(pop[3], 4500.25, 1e-9) || !math.IsNaN(pop[2]) {
		t.Fatalf("population = %v", pop)
	}
	growth, _ := tbl.Floats("growth")
	if !almostEqual(growth[0], 12.5, 1e-9) || !math.IsNaN(growth[1]) {
		t.Fatalf("growth = %v", growth)
	}
	mask, err := tbl.Missing("label")
	if err != nil {
		t.Fatalf("Missing: %v", err)
	}
	if mask[0] || !mask[3] {
		t.Fatalf("label mask = %v", mask)
	}
}

func TestLoadCSVMaxRowsAndTSV(t *testing.T) {
	rows := []string{"a\tb", "1\tx", "2\ty", "3\tz"}
	path := writeCSV(t, "data.tsv", rows)
	tbl, err := Load(path, Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Rows())
	}
	if !tbl.IsNumeric("a") || tbl.IsNumeric("b") {
		t.Fatalf("types: a numeric=%v b numeric=%v", tbl.IsNumeric("a"), tbl.IsNumeric("b"))
	}
}

func TestLoadCSVEmptyAndHeaderOnly(t *testing.T) {
	empty := writeCSV(t, "empty.csv", nil)
	tbl, err := LoadCSV(empty, Options{})
	if err != nil {
		t.Fatalf("LoadCSV empty: %v", err)
	}
	if tbl.Rows() != 0 || tbl.Cols() != 0 || len(tbl.NumericColumns()) != 0 {
		t.Fatalf("expected empty table, got %dx%d", tbl.Rows(), tbl.Cols())
	}

	header := writeCSV(t, "header.csv", []string{"x,y"})
	tbl, err = LoadCSV(header, Options{})
	if err != nil {
		t.Fatalf("LoadCSV header: %v", err)
	}
	if tbl.Rows() != 0 || tbl.Cols() != 2 {
		t.Fatalf("dims = %dx%d, want 0x2", tbl.Rows(), tbl.Cols())
	}
}

func TestWithFloatsCopiesAndKeepsShape(t *testing.T) {
	tbl, err := FromRecords("t", [][]string{{"a", "b", "c"}, {"1", "x", "4"}, {"2", "y", "5"}, {"3", "z", "6"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	vals := []float64{10, 20, 30}
	out, err := tbl.WithFloats("a", vals)
	if err != nil {
		t.Fatalf("WithFloats: %v", err)
	}
	vals[0] = -1
	if !equalStrings(out.Names(), tbl.Names()) || out.Rows() != tbl.Rows() {
		t.Fatalf("shape changed: %v/%d vs %v/%d", out.Names(), out.Rows(), tbl.Names(), tbl.Rows())
	}
	got, _ := out.Floats("a")
	if got[0] != 10 || got[2] != 30 {
		t.Fatalf("replaced column = %v", got)
	}
	orig, _ := tbl.Floats("a")
	if orig[0] != 1 {
		t.Fatalf("input table mutated: %v", orig)
	}
	c, _ := out.Floats("c")
	if c[0] != 4 || c[2] != 6 {
		t.Fatalf("untouched column = %v", c)
	}
	if _, err := tbl.WithFloats("a", []float64{1}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := tbl.WithFloats("zzz", vals); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if _, err := tbl.Floats("b"); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
}

func TestDropAndWriteCSV(t *testing.T) {
	tbl, err := FromRecords("t", [][]string{{"a", "b", "c"}, {"1", "x", "4"}, {"2", "y", "5"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	out, err := tbl.Drop("b")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if !equalStrings(out.Names(), []string{"a", "c"}) {
		t.Fatalf("names = %v", out.Names())
	}
	if tbl.Cols() != 3 {
		t.Fatalf("input table mutated")
	}
	var buf bytes.Buffer
	if err := out.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "a,c\n") || !strings.Contains(buf.String(), "2,5") {
		t.Fatalf("csv = %q", buf.String())
	}
	if _, err := tbl.Drop("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	all, err := tbl.Drop("a", "b", "c")
	if err != nil {
		t.Fatalf("Drop all: %v", err)
	}
	if all.Cols() != 0 || all.Rows() != 0 {
		t.Fatalf("expected empty table")
	}
}

func TestParseNumericAutoDetect(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"1,234.5", Options{}, 1234.5, true},
		{"1.234,5", Options{}, 1234.5, true},
		{"12,5", Options{}, 12.5, true},
		{"45%", Options{}, 45, true},
		{"1 200", Options{}, 1200, true},
		{"2024-08-10", Options{}, 0, false},
		{"A1", Options{}, 0, false},
		{"", Options{}, 0, false},
		// an explicit thousands separator fixes the decimal separator too
		{"1,234", Options{ThousandsSeparator: ','}, 1234, true},
		{"2,500.5", Options{ThousandsSeparator: ','}, 2500.5, true},
		{"1.234", Options{ThousandsSeparator: '.'}, 1234, true},
		{"1.234,5", Options{ThousandsSeparator: '.'}, 1234.5, true},
		{"1 234,5", Options{ThousandsSeparator: ' '}, 1234.5, true},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in, c.opt)
		if ok != c.ok || (ok && !almostEqual(got, c.want, 1e-9)) {
			t.Errorf("parseNumeric(%q, thousands %q) = %v,%v want %v,%v", c.in, c.opt.ThousandsSeparator, got, ok, c.want, c.ok)
		}
	}
}

func TestLoadCSVThousandsSeparator(t *testing.T) {
	path := writeCSV(t, "sales.csv", []string{"amount", `"1,234"`, `"2,500"`, `"3,000"`})
	tbl, err := LoadCSV(path, Options{ThousandsSeparator: ','})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	got, err := tbl.Floats("amount")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	want := []float64{1234, 2500, 3000}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("amount = %v, want %v", got, want)
		}
	}
}

func TestLoadCSVKeepsMixedTextColumns(t *testing.T) {
	path := writeCSV(t, "codes.csv", []string{
		"code;amount",
		"007;1.000,5",
		"A12;2.000,0",
		"1,5;NA",
		"1e3;4.500,25",
		" 0012 ;12,5",
	})
	tbl, err := LoadCSV(path, Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.IsNumeric("code") || !tbl.IsNumeric("amount") {
		t.Fatalf("numeric columns = %v", tbl.NumericColumns())
	}
	codes := tbl.Frame().Col("code").Records()
	if !equalStrings(codes, []string{"007", "A12", "1,5", "1e3", "0012"}) {
		t.Fatalf("code = %q", codes)
	}
	amount, _ := tbl.Floats("amount")
	if amount[0] != 1000.5 || amount[3] != 4500.25 || amount[4] != 12.5 || !math.IsNaN(amount[2]) {
		t.Fatalf("amount = %v", amount)
	}

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "code,amount\n007,1000.5\nA12,2000\n\"1,5\",\n1e3,4500.25\n0012,12.5\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVRoundTripsNumbers(t *testing.T) {
	tbl, err := FromRecords("t", [][]string{
		{"rate", "big", "name"},
		{"1.234e-07", "123456789.123456789", "a"},
		{"2.5e-07", "1.123456789", "NA"},
		{"", "3", "c"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "rate,big,name\n1.234e-07,123456789.12345679,a\n2.5e-07,1.123456789,\n,3,c\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}

	back, err := ReadCSV("t", strings.NewReader(buf.String()), Options{}, ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	for _, name := range []string{"rate", "big"} {
		a, _ := tbl.Floats(name)
		b, err := back.Floats(name)
		if err != nil {
			t.Fatalf("Floats %s: %v", name, err)
		}
		for i := range a {
			if math.IsNaN(a[i]) != math.IsNaN(b[i]) || (!math.IsNaN(a[i]) && math.Float64bits(a[i]) != math.Float64bits(b[i])) {
				t.Fatalf("%s[%d] = %v after round trip, want %v", name, i, b[i], a[i])
			}
		}
	}
	mask, _ := back.Missing("name")
	if mask[0] || !mask[1] || mask[2] {
		t.Fatalf("name mask = %v", mask)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
