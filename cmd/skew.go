package cmd

import (
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/skew"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	skewInput      inputFlags
	skewThreshold  float64
	skewOffset     float64
	skewSequential bool
	skewOutput     string
	skewDetails    string
)

var skewCmd = &cobra.Command{
	Use:   "skew <file>",
	Short: "Apply Box-Cox transforms to numeric columns whose skewness exceeds a threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := skewOptions(cmd, skewThreshold, skewOffset, skewSequential)
		if err != nil {
			return err
		}
		t, err := skewInput.load(cmd, args[0])
		if err != nil {
			return err
		}
		res, err := eda.NewProcessor(t, logging.L()).CorrectSkew(t, opt)
		if err != nil {
			return err
		}
		printSkewResult(cmd, res)

		if skewOutput != "" {
			if err := writeTable(res.Table, skewOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote transformed data to %s\n", skewOutput)
		}
		if skewDetails != "" {
			b, err := utils.MarshalForPath(skewDetails, res.Records)
			if err != nil {
				return err
			}
			if err := writeOutput(skewDetails, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote transform records to %s\n", skewDetails)
		}
		return nil
	},
}

// skewOptions merges config with the threshold/offset/sequential flags of cmd.
func skewOptions(cmd *cobra.Command, threshold, offset float64, sequential bool) (skew.Options, error) {
	c := settings()
	opt := skew.Options{
		Threshold:  c.SkewThreshold,
		Offset:     c.SkewOffset,
		Sequential: !c.ParallelFit,
	}
	f := cmd.Flags()
	if f.Changed("skew-threshold") {
		opt.Threshold = threshold
	}
	if f.Changed("offset") {
		opt.Offset = offset
	}
	if f.Changed("sequential") {
		opt.Sequential = sequential
	}
	if opt.Threshold < 0 {
		return opt, fmt.Errorf("--skew-threshold must be >= 0")
	}
	if opt.Offset < 0 {
		return opt, fmt.Errorf("--offset must be >= 0")
	}
	return opt, nil
}

func registerSkewFlags(cmd *cobra.Command, threshold, offset *float64, sequential *bool) {
	cmd.Flags().Float64Var(threshold, "skew-threshold", 0.8, "transform columns with |skewness| above this (overrides config)")
	cmd.Flags().Float64Var(offset, "offset", 0, "shift added to columns with values <= 0 (0 = |min|+1 per column)")
	cmd.Flags().BoolVar(sequential, "sequential", false, "fit columns one at a time instead of in parallel")
}

func printSkewResult(cmd *cobra.Command, res *skew.Result) {
	out := cmd.OutOrStdout()
	for _, name := range res.Transformed {
		r := res.Records[name]
		fmt.Fprintf(out, "✓ %s: lambda %.4f, skewness %.4f -> %.4f", name, r.Lambda, r.InitialSkew, r.NewSkew)
		if r.Offset != 0 {
			fmt.Fprintf(out, " (offset %.4g)", r.Offset)
		}
		fmt.Fprintln(out)
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(out, "- %s: skewness within threshold, unchanged\n", name)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s: not transformed: %v\n", f.Column, f.Err)
	}
	if len(res.Transformed)+len(res.Skipped)+len(res.Failures) == 0 {
		fmt.Fprintln(out, "No numeric columns to transform")
	}
}

func init() {
	rootCmd.AddCommand(skewCmd)
	skewInput.register(skewCmd)
	registerSkewFlags(skewCmd, &skewThreshold, &skewOffset, &skewSequential)
	skewCmd.Flags().StringVarP(&skewOutput, "output", "o", "", "optional path to write the transformed table as CSV")
	skewCmd.Flags().StringVar(&skewDetails, "details", "", "optional path to write per-column records (JSON, or YAML for .yaml/.yml)")
}
