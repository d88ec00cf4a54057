package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/visualize"
	"github.com/spf13/cobra"
)

var (
	anaInput       inputFlags
	anaMissingThr  float64
	anaSkewThr     float64
	anaOffset      float64
	anaSequential  bool
	anaOutlierThr  float64
	anaOutputPath  string
	anaTransformed string
	anaPlot        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run missing-value report, sparse-column drop, description and skew correction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := runOptions(cmd, anaMissingThr, anaSkewThr, anaOffset, anaSequential, anaOutlierThr)
		if err != nil {
			return err
		}
		t, err := anaInput.load(cmd, args[0])
		if err != nil {
			return err
		}
		p := eda.NewProcessor(t, logging.L())
		res, err := p.Run(opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if anaTransformed != "" {
			if err := writeTable(res.Skew.Table, anaTransformed); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote transformed data to %s\n", anaTransformed)
		}
		if anaPlot != "" {
			err := renderPlot(p, res.Cleaned, plotOptions(cmd, 0, 0, false, anaPlot), anaPlot)
			switch {
			case errors.Is(err, visualize.ErrNoNumericColumns):
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipping plot: %v\n", err)
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "✓ Wrote distributions to %s\n", anaPlot)
			}
		}

		md := res.Report.Markdown()
		if anaOutputPath != "" {
			if err := writeOutput(anaOutputPath, []byte(md)); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(out, md)
		return nil
	},
}

// runOptions merges config with the analysis flags of cmd.
func runOptions(cmd *cobra.Command, missingThr, skewThr, offset float64, sequential bool, outlierThr float64) (eda.RunOptions, error) {
	opt := eda.DefaultRunOptions()
	opt.MissingThreshold = settings().MissingThreshold
	if cmd.Flags().Changed("missing-threshold") {
		opt.MissingThreshold = missingThr
	}
	if opt.MissingThreshold < 0 || opt.MissingThreshold > 100 {
		return opt, fmt.Errorf("--missing-threshold must be within [0, 100]")
	}
	so, err := skewOptions(cmd, skewThr, offset, sequential)
	if err != nil {
		return opt, err
	}
	opt.Skew = so
	if cmd.Flags().Changed("outlier-threshold") {
		opt.Describe.OutlierThreshold = outlierThr
	}
	return opt, nil
}

func registerAnalysisFlags(cmd *cobra.Command, missingThr, skewThr, offset *float64, sequential *bool, outlierThr *float64) {
	cmd.Flags().Float64Var(missingThr, "missing-threshold", 80, "drop columns with missing percentage strictly above this (overrides config)")
	registerSkewFlags(cmd, skewThr, offset, sequential)
	cmd.Flags().Float64Var(outlierThr, "outlier-threshold", analysis.DefaultDescribeOptions().OutlierThreshold, "robust |z| threshold for outliers (MAD-based, 0 disables)")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd)
	registerAnalysisFlags(analyzeCmd, &anaMissingThr, &anaSkewThr, &anaOffset, &anaSequential, &anaOutlierThr)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	analyzeCmd.Flags().StringVar(&anaTransformed, "transformed", "", "optional path to write the cleaned, skew-corrected table as CSV")
	analyzeCmd.Flags().StringVar(&anaPlot, "plot", "", "optional path to write distribution plots of the cleaned table (.png or .svg)")
}
