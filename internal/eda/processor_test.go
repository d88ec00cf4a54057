package eda

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/KaramelBytes/datalens-cli/internal/visualize"
	"github.com/google/uuid"
)

func peopleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("people.csv", [][]string{
		{"income", "age", "notes", "city"},
		{"1", "23", "", "Oslo"},
		{"1", "31", "", "Rome"},
		{"1", "45", "", "Oslo"},
		{"2", "52", "vip", "Lima"},
		{"2", "38", "", "Rome"},
		{"3", "27", "", "Oslo"},
		{"100", "61", "", "Lima"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func TestDropMissingStrictlyAboveThreshold(t *testing.T) {
	p := NewProcessor(peopleTable(t), nil)
	pct := map[string]float64{"income": 80, "age": 80.01, "notes": 85.7, "ghost": 99}
	out, dropped, err := p.DropMissing(pct, 80)
	if err != nil {
		t.Fatalf("DropMissing: %v", err)
	}
	if strings.Join(dropped, ",") != "age,notes" {
		t.Fatalf("dropped = %v", dropped)
	}
	if strings.Join(out.Names(), ",") != "income,city" {
		t.Fatalf("remaining = %v", out.Names())
	}
	if p.Table().Cols() != 4 {
		t.Fatalf("processor table modified: %v", p.Table().Names())
	}
}

func TestDropMissingNothingAbove(t *testing.T) {
	p := NewProcessor(peopleTable(t), nil)
	out, dropped, err := p.DropMissing(map[string]float64{"notes": 10}, 80)
	if err != nil {
		t.Fatalf("DropMissing: %v", err)
	}
	if len(dropped) != 0 || out.Cols() != 4 || out.Rows() != 7 {
		t.Fatalf("unexpected drop: %v (%dx%d)", dropped, out.Rows(), out.Cols())
	}
}

func TestRunPipeline(t *testing.T) {
	tbl := peopleTable(t)
	p := NewProcessor(tbl, nil)
	out, err := p.Run(DefaultRunOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rep := out.Report
	if _, err := uuid.Parse(rep.RunID); err != nil {
		t.Fatalf("run id %q: %v", rep.RunID, err)
	}
	if rep.Rows != 7 || rep.Cols != 4 {
		t.Fatalf("shape = %dx%d", rep.Rows, rep.Cols)
	}
	if rep.Missing.Stats[0].Column != "notes" {
		t.Fatalf("most missing = %+v", rep.Missing.Stats[0])
	}
	if strings.Join(rep.Dropped, ",") != "notes" {
		t.Fatalf("dropped = %v", rep.Dropped)
	}
	if len(rep.Columns) != 3 {
		t.Fatalf("described %d columns", len(rep.Columns))
	}
	if len(rep.Transforms) != 1 || rep.Transforms[0].Column != "income" {
		t.Fatalf("transforms = %+v", rep.Transforms)
	}
	if !almostEqual(rep.Transforms[0].Lambda, -0.7455931421751427, 1e-4) {
		t.Fatalf("lambda = %v", rep.Transforms[0].Lambda)
	}
	if strings.Join(rep.Skipped, ",") != "age" {
		t.Fatalf("skipped = %v", rep.Skipped)
	}

	// Corrected table keeps the cleaned shape; the source table is untouched.
	res := out.Skew.Table
	if res.Rows() != 7 || strings.Join(res.Names(), ",") != "income,age,city" {
		t.Fatalf("corrected shape = %d %v", res.Rows(), res.Names())
	}
	orig, _ := tbl.Floats("income")
	if orig[6] != 100 {
		t.Fatalf("input table modified: %v", orig)
	}
	age, _ := res.Floats("age")
	origAge, _ := tbl.Floats("age")
	for i := range age {
		if age[i] != origAge[i] {
			t.Fatalf("skipped column changed at %d: %v != %v", i, age[i], origAge[i])
		}
	}

	md := rep.Markdown()
	if !strings.Contains(md, "- notes\n") || !strings.Contains(md, "- income: lambda -0.74") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestRunWithoutNumericColumns(t *testing.T) {
	tbl, err := dataset.FromRecords("text.csv", [][]string{{"city"}, {"Oslo"}, {"Rome"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	out, err := NewProcessor(tbl, nil).Run(DefaultRunOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Report.Transforms) != 0 || len(out.Report.Warnings) != 1 {
		t.Fatalf("report = %+v", out.Report)
	}
	if out.Skew.Table.Cols() != 1 {
		t.Fatalf("table changed: %v", out.Skew.Table.Names())
	}
}

func TestVisualizeWritesPNG(t *testing.T) {
	p := NewProcessor(peopleTable(t), nil)
	var buf bytes.Buffer
	if err := p.Visualize(p.Table(), &buf, visualize.Options{Columns: 2}); err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("not a PNG")
	}
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
