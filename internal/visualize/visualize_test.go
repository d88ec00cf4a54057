package visualize

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
)

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("sample.csv", [][]string{
		{"income", "age", "city", "flat", "score"},
		{"1", "23", "Oslo", "5", "10"},
		{"1", "31", "Rome", "5", "11"},
		{"1", "45", "Oslo", "5", "9.5"},
		{"2", "52", "Lima", "5", ""},
		{"2", "38", "Rome", "5", "10.5"},
		{"3", "27", "Oslo", "5", "9.8"},
		{"100", "61", "Lima", "5", "50"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func TestBuildOnePanelPerNumericColumn(t *testing.T) {
	panels, err := Build(sampleTable(t), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"income", "age", "flat", "score"}
	if len(panels) != len(want) {
		t.Fatalf("got %d panels, want %d", len(panels), len(want))
	}
	for i, p := range panels {
		if p.Column != want[i] {
			t.Fatalf("panel %d = %s, want %s", i, p.Column, want[i])
		}
		if !strings.HasPrefix(p.Plot.Title.Text, "Distribution of "+want[i]+"\nSkewness: ") {
			t.Fatalf("title = %q", p.Plot.Title.Text)
		}
		if p.Plot.X.Label.Text != want[i] || p.Plot.Y.Label.Text != "Frequency" {
			t.Fatalf("labels = %q / %q", p.Plot.X.Label.Text, p.Plot.Y.Label.Text)
		}
	}
	if !strings.Contains(panels[0].Plot.Title.Text, "Skewness: 2.64") {
		t.Fatalf("income title = %q", panels[0].Plot.Title.Text)
	}
	if panels[0].Summary.Q1 != 1 || panels[0].Summary.Q3 != 2.5 {
		t.Fatalf("income quartiles = %v / %v", panels[0].Summary.Q1, panels[0].Summary.Q3)
	}
	if panels[3].Summary.Missing != 1 {
		t.Fatalf("score missing = %d", panels[3].Summary.Missing)
	}
}

func TestRenderPNGAndSVG(t *testing.T) {
	tbl := sampleTable(t)

	var png bytes.Buffer
	if err := Render(tbl, &png, Options{Columns: 3}); err != nil {
		t.Fatalf("Render png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}

	var svg bytes.Buffer
	if err := Render(tbl, &svg, Options{Columns: 2, Format: "svg"}); err != nil {
		t.Fatalf("Render svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Fatalf("output is not an SVG")
	}
}

func TestRenderNoNumericColumns(t *testing.T) {
	tbl, err := dataset.FromRecords("text.csv", [][]string{{"city"}, {"Oslo"}, {"Rome"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	var buf bytes.Buffer
	if err := Render(tbl, &buf, DefaultOptions()); !errors.Is(err, ErrNoNumericColumns) {
		t.Fatalf("expected ErrNoNumericColumns, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	if FormatFromPath("out/Plot.SVG") != "svg" || FormatFromPath("dist.png") != "png" || FormatFromPath("dist") != "png" {
		t.Fatalf("unexpected format detection")
	}
}
