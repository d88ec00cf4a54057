package skew

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/sourcegraph/conc/iter"
	"gonum.org/v1/gonum/floats"
)

// Options controls skew correction.
type Options struct {
	// Threshold is the absolute skewness above which a column is transformed.
	Threshold float64
	// Offset is added to a column that contains values <= 0.
	// If 0, |min| + 1 is used for that column.
	Offset float64
	// Sequential fits columns one after another instead of in parallel.
	Sequential bool
}

// DefaultOptions returns the standard threshold of 0.8 with automatic offsets.
func DefaultOptions() Options {
	return Options{Threshold: 0.8}
}

// Record describes a successfully transformed column.
type Record struct {
	Lambda      float64 `json:"lambda" yaml:"lambda"`
	InitialSkew float64 `json:"initial_skew" yaml:"initial_skew"`
	NewSkew     float64 `json:"new_skew" yaml:"new_skew"`
	// Offset added before the transform; 0 when the column was already positive.
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// Failure is a column whose transform could not be computed. Its values are left unchanged.
type Failure struct {
	Column string
	Err    error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Column, f.Err) }

// Result is the outcome of a correction pass.
type Result struct {
	// Table has the same shape as the input; only transformed columns differ.
	Table *dataset.Table
	// Records is keyed by column name and holds only transformed columns.
	Records map[string]Record
	// Transformed lists the keys of Records in table order.
	Transformed []string
	// Skipped lists numeric columns whose skewness was within the threshold.
	Skipped  []string
	Failures []Failure
}

// Corrector applies Box-Cox transforms to numeric columns whose skewness exceeds a threshold.
type Corrector struct {
	opt Options
	log *slog.Logger
}

// NewCorrector returns a Corrector. A nil logger discards diagnostics.
func NewCorrector(opt Options, log *slog.Logger) *Corrector {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Corrector{opt: opt, log: log}
}

type columnFit struct {
	name     string
	values   []float64
	initial  float64
	offset   float64
	minValue float64
	fitted   []float64
	lambda   float64
	err      error
}

// Correct transforms every numeric column of t whose |skewness| exceeds the threshold.
// The input table is never modified; the returned Result carries a new table.
// Per-column failures are collected in Result.Failures and do not stop the pass.
func (c *Corrector) Correct(t *dataset.Table) (*Result, error) {
	if t == nil {
		return nil, errors.New("skew: nil table")
	}
	res := &Result{Table: t, Records: map[string]Record{}}

	var pending []*columnFit
	for _, name := range t.NumericColumns() {
		vals, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		initial := Skewness(vals)
		if !(math.Abs(initial) > c.opt.Threshold) {
			c.log.Info("column skipped, skewness within threshold",
				"column", name, "skewness", initial, "threshold", c.opt.Threshold)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		observed := present(vals)
		pending = append(pending, &columnFit{
			name:     name,
			values:   vals,
			initial:  initial,
			offset:   EffectiveOffset(observed, c.opt.Offset),
			minValue: floats.Min(observed),
		})
	}

	fit := func(cf *columnFit) {
		shifted := present(cf.values)
		if cf.offset != 0 {
			floats.AddConst(cf.offset, shifted)
		}
		cf.fitted, cf.lambda, cf.err = Fit(shifted)
	}
	if c.opt.Sequential {
		for _, cf := range pending {
			fit(cf)
		}
	} else {
		iter.ForEach(pending, func(cf **columnFit) { fit(*cf) })
	}

	out := t
	for _, cf := range pending {
		c.log.Info("transforming column", "column", cf.name, "skewness", cf.initial)
		if cf.offset != 0 {
			c.log.Info("added offset", "column", cf.name, "offset", cf.offset, "min", cf.minValue)
		}
		if cf.err != nil {
			c.log.Warn("transform failed, column left unchanged", "column", cf.name, "err", cf.err)
			res.Failures = append(res.Failures, Failure{Column: cf.name, Err: cf.err})
			continue
		}
		transformed := scatter(cf.values, cf.fitted)
		next, err := out.WithFloats(cf.name, transformed)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Column: cf.name, Err: err})
			continue
		}
		out = next
		rec := Record{
			Lambda:      cf.lambda,
			InitialSkew: cf.initial,
			NewSkew:     Skewness(transformed),
			Offset:      cf.offset,
		}
		res.Records[cf.name] = rec
		res.Transformed = append(res.Transformed, cf.name)
		c.log.Info("column transformed", "column", cf.name,
			"lambda", rec.Lambda, "initial_skew", rec.InitialSkew, "new_skew", rec.NewSkew)
	}
	res.Table = out
	return res, nil
}

// EffectiveOffset returns the shift applied before the transform: 0 when every value is
// positive, offset when the caller supplied one, and |min| + 1 otherwise.
func EffectiveOffset(values []float64, offset float64) float64 {
	vals := present(values)
	if len(vals) == 0 {
		return 0
	}
	lo := floats.Min(vals)
	if lo > 0 {
		return 0
	}
	if offset > 0 {
		return offset
	}
	return math.Abs(lo) + 1
}

// scatter writes fitted values back to the non-NaN positions of orig.
func scatter(orig, fitted []float64) []float64 {
	out := make([]float64, len(orig))
	j := 0
	for i, v := range orig {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = fitted[j]
		j++
	}
	return out
}
