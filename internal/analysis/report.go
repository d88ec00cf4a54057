package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/skew"
)

// Transform pairs a column with its skew-correction record.
type Transform struct {
	Column string `json:"column" yaml:"column"`
	skew.Record `yaml:",inline"`
}

// Report is a markdown-friendly summary of one exploratory pass over a dataset.
type Report struct {
	Name  string
	RunID string
	Rows  int
	Cols  int

	Missing          MissingReport
	MissingThreshold float64
	Dropped          []string

	// Columns describes the cleaned table before skew correction.
	Columns []ColumnSummary

	SkewThreshold float64
	Transforms    []Transform
	Skipped       []string
	Failures      []skew.Failure
	Warnings      []string
}

// TransformsFrom orders a correction result's records by table order.
func TransformsFrom(res *skew.Result) []Transform {
	if res == nil {
		return nil
	}
	out := make([]Transform, 0, len(res.Transformed))
	for _, name := range res.Transformed {
		out = append(out, Transform{Column: name, Record: res.Records[name]})
	}
	return out
}

// Markdown renders the report as compact sections suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Cols))

	if len(r.Missing.Stats) > 0 {
		b.WriteString("\n[MISSING VALUES]\n")
		for _, s := range r.Missing.Stats {
			b.WriteString(fmt.Sprintf("- %s: %d missing (%.2f%%)\n", safeName(s.Column), s.Count, round2(s.Percent)))
		}
	}

	b.WriteString("\n[DROPPED COLUMNS]\n")
	if len(r.Dropped) == 0 {
		b.WriteString(fmt.Sprintf("- none above %.4g%% missing\n", r.MissingThreshold))
	} else {
		for _, d := range r.Dropped {
			b.WriteString(fmt.Sprintf("- %s\n", safeName(d)))
		}
	}

	if len(r.Columns) > 0 {
		b.WriteString("\n[DISTRIBUTIONS]\n")
		for _, c := range r.Columns {
			b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %d)", safeName(c.Name), c.Kind, c.NonNull, c.Missing))
			switch c.Kind {
			case KindNumeric:
				if c.NonNull > 0 {
					b.WriteString(fmt.Sprintf(" — min %.4g, Q1 %.4g, median %.4g, Q3 %.4g, max %.4g; mean %.4g, std %.4g",
						c.Min, c.Q1, c.Median, c.Q3, c.Max, c.Mean, c.Std))
					if !math.IsNaN(c.Skew) {
						b.WriteString(fmt.Sprintf("; skewness %.2f", c.Skew))
					}
				}
				if c.OutlierThreshold > 0 {
					b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				}
			case KindCategorical:
				if len(c.TopValues) > 0 {
					b.WriteString(" — top: ")
					for i, kv := range c.TopValues {
						if i > 0 {
							b.WriteString(", ")
						}
						b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
					}
					if c.Unique > len(c.TopValues) {
						b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
					}
				}
			case KindText:
				if len(c.ExampleTexts) > 0 {
					b.WriteString(" — e.g., ")
					for i, ex := range c.ExampleTexts {
						if i > 0 {
							b.WriteString(" | ")
						}
						b.WriteString(safeVal(ex))
					}
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(fmt.Sprintf("\n[SKEW CORRECTION] (Box-Cox, |skewness| > %.4g)\n", r.SkewThreshold))
	if len(r.Transforms) == 0 {
		b.WriteString("- no columns transformed\n")
	}
	for _, tr := range r.Transforms {
		b.WriteString(fmt.Sprintf("- %s: lambda %.4f, skewness %.4f -> %.4f", safeName(tr.Column), tr.Lambda, tr.InitialSkew, tr.NewSkew))
		if tr.Offset != 0 {
			b.WriteString(fmt.Sprintf(" (offset %.4g)", tr.Offset))
		}
		b.WriteString("\n")
	}
	if len(r.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("- within threshold: %s\n", strings.Join(r.Skipped, ", ")))
	}
	for _, f := range r.Failures {
		b.WriteString(fmt.Sprintf("- %s: not transformed (%v)\n", safeName(f.Column), f.Err))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
