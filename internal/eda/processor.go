// Package eda wraps the exploratory operations on one loaded dataset.
package eda

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/KaramelBytes/datalens-cli/internal/skew"
	"github.com/KaramelBytes/datalens-cli/internal/visualize"
	"github.com/google/uuid"
)

// DefaultMissingThreshold is the missing percentage above which a column is dropped.
const DefaultMissingThreshold = 80.0

// Processor holds the dataset the operations start from. Every operation returns new
// values and leaves the held table unchanged.
type Processor struct {
	table *dataset.Table
	log   *slog.Logger
}

// NewProcessor returns a Processor over t. A nil logger discards diagnostics.
func NewProcessor(t *dataset.Table, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{table: t, log: log}
}

// Table returns the dataset the processor was created with.
func (p *Processor) Table() *dataset.Table { return p.table }

// MissingValues reports per-column missing counts and percentages.
func (p *Processor) MissingValues() (analysis.MissingReport, error) {
	return analysis.Missing(p.table)
}

// DropMissing removes the columns whose missing percentage is strictly greater than
// threshold. Names in percent that are not columns of the table are ignored.
// The dropped names are returned in table order.
func (p *Processor) DropMissing(percent map[string]float64, threshold float64) (*dataset.Table, []string, error) {
	var drop []string
	for _, name := range p.table.Names() {
		if pct, ok := percent[name]; ok && pct > threshold {
			drop = append(drop, name)
		}
	}
	out, err := p.table.Drop(drop...)
	if err != nil {
		return nil, nil, err
	}
	p.log.Info("dropped sparse columns", "columns", drop, "threshold", threshold)
	return out, drop, nil
}

// Describe summarizes every column of t.
func (p *Processor) Describe(t *dataset.Table, opt analysis.DescribeOptions) ([]analysis.ColumnSummary, error) {
	return analysis.Describe(t, opt)
}

// Visualize renders the distribution grid of t's numeric columns to w.
func (p *Processor) Visualize(t *dataset.Table, w io.Writer, opt visualize.Options) error {
	return visualize.Render(t, w, opt)
}

// CorrectSkew applies Box-Cox transforms to the skewed numeric columns of t.
func (p *Processor) CorrectSkew(t *dataset.Table, opt skew.Options) (*skew.Result, error) {
	return skew.NewCorrector(opt, p.log).Correct(t)
}

// RunOptions configures a full analysis pass.
type RunOptions struct {
	MissingThreshold float64
	Skew             skew.Options
	Describe         analysis.DescribeOptions
}

// DefaultRunOptions returns the standard thresholds.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		MissingThreshold: DefaultMissingThreshold,
		Skew:             skew.DefaultOptions(),
		Describe:         analysis.DefaultDescribeOptions(),
	}
}

// Outcome is the product of Run.
type Outcome struct {
	Report *analysis.Report
	// Cleaned is the table after sparse columns were dropped.
	Cleaned *dataset.Table
	// Skew holds the corrected table and per-column records.
	Skew *skew.Result
}

// Run reports missing values, drops sparse columns, describes the remaining columns
// and corrects skewed ones.
func (p *Processor) Run(opt RunOptions) (*Outcome, error) {
	if p.table == nil {
		return nil, errors.New("eda: nil table")
	}
	missing, err := p.MissingValues()
	if err != nil {
		return nil, fmt.Errorf("missing values: %w", err)
	}
	cleaned, dropped, err := p.DropMissing(missing.Percentages(), opt.MissingThreshold)
	if err != nil {
		return nil, fmt.Errorf("drop columns: %w", err)
	}
	cols, err := p.Describe(cleaned, opt.Describe)
	if err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	res, err := p.CorrectSkew(cleaned, opt.Skew)
	if err != nil {
		return nil, fmt.Errorf("correct skew: %w", err)
	}

	rep := &analysis.Report{
		Name:             p.table.Name,
		RunID:            uuid.NewString(),
		Rows:             p.table.Rows(),
		Cols:             p.table.Cols(),
		Missing:          missing,
		MissingThreshold: opt.MissingThreshold,
		Dropped:          dropped,
		Columns:          cols,
		SkewThreshold:    opt.Skew.Threshold,
		Transforms:       analysis.TransformsFrom(res),
		Skipped:          res.Skipped,
		Failures:         res.Failures,
	}
	if len(cleaned.NumericColumns()) == 0 {
		rep.Warnings = append(rep.Warnings, "no numeric columns; skew correction had nothing to do")
	}
	if cleaned.Cols() == 0 && p.table.Cols() > 0 {
		rep.Warnings = append(rep.Warnings, "every column was dropped for missing values")
	}
	return &Outcome{Report: rep, Cleaned: cleaned, Skew: res}, nil
}
