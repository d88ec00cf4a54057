// Package visualize renders numeric column distributions as a grid of histograms
// annotated with quartile markers and skewness.
package visualize

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ErrNoNumericColumns is returned when the table has nothing to plot.
var ErrNoNumericColumns = errors.New("no numeric columns to plot")

var (
	histFill = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	q1Color  = color.RGBA{R: 220, A: 255}
	q3Color  = color.RGBA{G: 160, A: 255}
	kdeColor = color.RGBA{R: 30, G: 90, B: 160, A: 255}
)

// Options controls the grid layout and rendering.
type Options struct {
	// Columns is the number of panels per row.
	Columns int
	Bins    int
	KDE     bool
	// PanelWidth and PanelHeight size each tile.
	PanelWidth  vg.Length
	PanelHeight vg.Length
	// Format is "png" or "svg".
	Format string
}

// DefaultOptions returns a three-wide grid of 30-bin histograms with KDE overlays.
func DefaultOptions() Options {
	return Options{
		Columns:     3,
		Bins:        30,
		KDE:         true,
		PanelWidth:  5 * vg.Inch,
		PanelHeight: 4 * vg.Inch,
		Format:      "png",
	}
}

// FormatFromPath picks "svg" for .svg paths and "png" otherwise.
func FormatFromPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		return "svg"
	}
	return "png"
}

// Panel is one column's plot together with the statistics drawn on it.
type Panel struct {
	Column  string
	Summary analysis.ColumnSummary
	Plot    *plot.Plot
}

// Build creates one panel per numeric column, in table order.
func Build(t *dataset.Table, opt Options) ([]Panel, error) {
	opt = withDefaults(opt)
	names := t.NumericColumns()
	if len(names) == 0 {
		return nil, ErrNoNumericColumns
	}
	panels := make([]Panel, 0, len(names))
	for _, name := range names {
		vals, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		sum := analysis.DescribeColumn(name, vals, analysis.DescribeOptions{})
		p, err := panel(name, present(vals), sum, opt)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", name, err)
		}
		panels = append(panels, Panel{Column: name, Summary: sum, Plot: p})
	}
	return panels, nil
}

// Render draws the panel grid to w. Rows are ceil(panels/Columns); unused tiles stay blank.
func Render(t *dataset.Table, w io.Writer, opt Options) error {
	opt = withDefaults(opt)
	panels, err := Build(t, opt)
	if err != nil {
		return err
	}
	cols := opt.Columns
	if cols > len(panels) {
		cols = len(panels)
	}
	rows := (len(panels) + cols - 1) / cols
	width := opt.PanelWidth * vg.Length(cols)
	height := opt.PanelHeight * vg.Length(rows)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	switch opt.Format {
	case "svg":
		c := vgsvg.New(width, height)
		drawGrid(draw.New(c), tiles, panels)
		_, err = c.WriteTo(w)
	default:
		c := vgimg.New(width, height)
		drawGrid(draw.New(c), tiles, panels)
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", opt.Format, err)
	}
	return nil
}

func drawGrid(dc draw.Canvas, tiles draw.Tiles, panels []Panel) {
	for i, p := range panels {
		p.Plot.Draw(tiles.At(dc, i%tiles.Cols, i/tiles.Cols))
	}
}

func panel(name string, vals []float64, sum analysis.ColumnSummary, opt Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s\nSkewness: %.2f", name, sum.Skew)
	p.X.Label.Text = name
	p.Y.Label.Text = "Frequency"
	p.Legend.Top = true
	if len(vals) == 0 {
		return p, nil
	}

	h, err := plotter.NewHist(plotter.Values(vals), opt.Bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = histFill
	p.Add(h)

	top := 0.0
	binWidth := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
		binWidth = b.Max - b.Min
	}

	if opt.KDE && len(vals) > 1 {
		if xys := kde(vals, binWidth); xys != nil {
			l, err := plotter.NewLine(xys)
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = kdeColor
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
			for _, xy := range xys {
				top = math.Max(top, xy.Y)
			}
		}
	}

	for _, m := range []struct {
		label string
		x     float64
		c     color.Color
	}{
		{"Q1", sum.Q1, q1Color},
		{"Q3", sum.Q3, q3Color},
	} {
		l, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: 0}, {X: m.x, Y: top}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = m.c
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(l)
		p.Legend.Add(m.label, l)
	}
	return p, nil
}

// kde evaluates a Gaussian kernel density estimate (Scott's bandwidth) over the data range,
// scaled to histogram counts.
func kde(vals []float64, binWidth float64) plotter.XYs {
	n := float64(len(vals))
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) || binWidth <= 0 {
		return nil
	}
	bw := sd * math.Pow(n, -0.2)
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	const points = 200
	xys := make(plotter.XYs, points)
	step := (hi - lo) / float64(points-1)
	for i := range xys {
		x := lo + float64(i)*step
		var d float64
		for _, v := range vals {
			d += distuv.Normal{Mu: v, Sigma: bw}.Prob(x)
		}
		xys[i].X = x
		// density * n * binWidth; the 1/n of the estimate cancels.
		xys[i].Y = d * binWidth
	}
	return xys
}

func withDefaults(opt Options) Options {
	def := DefaultOptions()
	if opt.Columns <= 0 {
		opt.Columns = def.Columns
	}
	if opt.Bins <= 0 {
		opt.Bins = def.Bins
	}
	if opt.PanelWidth <= 0 {
		opt.PanelWidth = def.PanelWidth
	}
	if opt.PanelHeight <= 0 {
		opt.PanelHeight = def.PanelHeight
	}
	if opt.Format == "" {
		opt.Format = def.Format
	}
	return opt
}

func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
