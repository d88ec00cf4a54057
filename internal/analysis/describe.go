package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/KaramelBytes/datalens-cli/internal/skew"
	"gonum.org/v1/gonum/stat"
)

// Column kinds reported by Describe.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
	KindText        = "text"
)

// DescribeOptions controls per-column statistics.
type DescribeOptions struct {
	// OutlierThreshold is the robust |z| cut-off (MAD based). 0 disables outlier counts.
	OutlierThreshold float64
	// TopValues caps the categorical values listed per column.
	TopValues int
}

// DefaultDescribeOptions returns the usual 3.5 robust-z threshold and 8 top values.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{OutlierThreshold: 3.5, TopValues: 8}
}

// ColumnSummary captures the distribution of one column.
type ColumnSummary struct {
	Name    string
	Kind    string
	NonNull int
	Missing int
	// Numeric stats
	Min, Q1, Median, Q3, Max float64
	Mean, Std                float64
	Skew                     float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	Unique       int
	ExampleTexts []string
}

// IQR is the interquartile range Q3 - Q1.
func (c ColumnSummary) IQR() float64 { return c.Q3 - c.Q1 }

type CategoryCount struct {
	Value string
	Count int
}

// Describe summarizes every column of t in table order.
func Describe(t *dataset.Table, opt DescribeOptions) ([]ColumnSummary, error) {
	out := make([]ColumnSummary, 0, t.Cols())
	for _, name := range t.Names() {
		mask, err := t.Missing(name)
		if err != nil {
			return nil, err
		}
		s := ColumnSummary{Name: name}
		for _, m := range mask {
			if m {
				s.Missing++
			} else {
				s.NonNull++
			}
		}
		if t.IsNumeric(name) {
			vals, err := t.Floats(name)
			if err != nil {
				return nil, err
			}
			describeNumeric(&s, vals, opt)
		} else {
			describeText(&s, t.Frame().Col(name).Records(), mask, opt)
		}
		out = append(out, s)
	}
	return out, nil
}

// DescribeColumn summarizes a single numeric column.
func DescribeColumn(name string, vals []float64, opt DescribeOptions) ColumnSummary {
	s := ColumnSummary{Name: name}
	for _, v := range vals {
		if math.IsNaN(v) {
			s.Missing++
		} else {
			s.NonNull++
		}
	}
	describeNumeric(&s, vals, opt)
	return s
}

func describeNumeric(s *ColumnSummary, vals []float64, opt DescribeOptions) {
	s.Kind = KindNumeric
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		s.Skew = math.NaN()
		return
	}
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	if len(sorted) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.Skew = skew.Skewness(sorted)

	thr := opt.OutlierThreshold
	if thr <= 0 || len(sorted) < 8 {
		return
	}
	median, mad := medianMAD(sorted)
	s.OutlierThreshold = thr
	if mad == 0 {
		return
	}
	for _, v := range sorted {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
}

func describeText(s *ColumnSummary, vals []string, mask []bool, opt DescribeOptions) {
	cats := map[string]int{}
	var examples []string
	for i, v := range vals {
		if mask[i] {
			continue
		}
		if len(cats) <= 10000 && len(v) <= 64 {
			cats[v]++
		}
		if len(examples) < 3 {
			examples = append(examples, v)
		}
	}
	if len(cats) == 0 {
		s.Kind = KindText
		s.ExampleTexts = examples
		return
	}
	s.Kind = KindCategorical
	s.Unique = len(cats)
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	limit := opt.TopValues
	if limit <= 0 {
		limit = 8
	}
	if len(tops) > limit {
		tops = tops[:limit]
	}
	s.TopValues = tops
}

// medianMAD computes median and MAD (median absolute deviation) of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	median = quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile linearly interpolates between the closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
