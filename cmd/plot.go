package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/dataset"
	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/visualize"
	"github.com/spf13/cobra"
)

var (
	plotInput   inputFlags
	plotColumns int
	plotBins    int
	plotNoKDE   bool
	plotOutput  string
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Render histograms of numeric columns with Q1/Q3 markers and skewness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := plotOptions(cmd, plotColumns, plotBins, plotNoKDE, plotOutput)
		t, err := plotInput.load(cmd, args[0])
		if err != nil {
			return err
		}
		if err := renderPlot(eda.NewProcessor(t, logging.L()), t, opt, plotOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d distribution(s) to %s\n", len(t.NumericColumns()), plotOutput)
		return nil
	},
}

func plotOptions(cmd *cobra.Command, columns, bins int, noKDE bool, path string) visualize.Options {
	c := settings()
	opt := visualize.DefaultOptions()
	opt.Columns = c.PlotColumns
	opt.Bins = c.PlotBins
	opt.KDE = c.PlotKDE
	f := cmd.Flags()
	if f.Changed("columns") && columns > 0 {
		opt.Columns = columns
	}
	if f.Changed("bins") && bins > 0 {
		opt.Bins = bins
	}
	if f.Changed("no-kde") {
		opt.KDE = !noKDE
	}
	opt.Format = visualize.FormatFromPath(path)
	return opt
}

func renderPlot(p *eda.Processor, t *dataset.Table, opt visualize.Options, path string) error {
	var buf bytes.Buffer
	if err := p.Visualize(t, &buf, opt); err != nil {
		return err
	}
	return writeOutput(path, buf.Bytes())
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotInput.register(plotCmd)
	plotCmd.Flags().IntVar(&plotColumns, "columns", 3, "plots per row (overrides config)")
	plotCmd.Flags().IntVar(&plotBins, "bins", 30, "histogram bins (overrides config)")
	plotCmd.Flags().BoolVar(&plotNoKDE, "no-kde", false, "omit the density curve")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "distributions.png", "output image (.png or .svg)")
}
