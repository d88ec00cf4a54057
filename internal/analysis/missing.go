package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
)

// MissingStat is the missing-value count and percentage (0-100) of one column.
type MissingStat struct {
	Column  string  `json:"column" yaml:"column"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// MissingReport lists per-column missingness, most-missing first.
type MissingReport struct {
	Rows  int
	Stats []MissingStat
}

// Missing counts missing cells per column. Columns with equal percentages keep table order.
func Missing(t *dataset.Table) (MissingReport, error) {
	rep := MissingReport{Rows: t.Rows()}
	for _, name := range t.Names() {
		mask, err := t.Missing(name)
		if err != nil {
			return MissingReport{}, err
		}
		var n int
		for _, m := range mask {
			if m {
				n++
			}
		}
		pct := 0.0
		if rep.Rows > 0 {
			pct = float64(n) * 100 / float64(rep.Rows)
		}
		rep.Stats = append(rep.Stats, MissingStat{Column: name, Count: n, Percent: pct})
	}
	sort.SliceStable(rep.Stats, func(i, j int) bool {
		return rep.Stats[i].Percent > rep.Stats[j].Percent
	})
	return rep, nil
}

// Percentages maps column name to missing percentage.
func (r MissingReport) Percentages() map[string]float64 {
	out := make(map[string]float64, len(r.Stats))
	for _, s := range r.Stats {
		out[s.Column] = s.Percent
	}
	return out
}

// Write prints the report as an aligned table with percentages rounded to two decimals.
func (r MissingReport) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Column\tMissing Count\tMissing Percentage")
	for _, s := range r.Stats {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", safeName(s.Column), s.Count, round2(s.Percent))
	}
	return tw.Flush()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
