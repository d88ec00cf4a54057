package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dropInput     inputFlags
	dropThreshold float64
	dropOutput    string
)

var dropCmd = &cobra.Command{
	Use:   "drop <file>",
	Short: "Drop columns whose missing percentage is above a threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold := settings().MissingThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = dropThreshold
		}
		if threshold < 0 || threshold > 100 {
			return fmt.Errorf("--threshold must be within [0, 100]")
		}
		t, err := dropInput.load(cmd, args[0])
		if err != nil {
			return err
		}
		p := eda.NewProcessor(t, logging.L())
		rep, err := p.MissingValues()
		if err != nil {
			return err
		}
		cleaned, dropped, err := p.DropMissing(rep.Percentages(), threshold)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(dropped) == 0 {
			fmt.Fprintf(out, "✓ No columns above %.4g%% missing\n", threshold)
		} else {
			fmt.Fprintf(out, "✓ Dropped %d column(s): %s\n", len(dropped), strings.Join(dropped, ", "))
		}
		if dropOutput != "" {
			if err := writeTable(cleaned, dropOutput); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %d columns to %s\n", cleaned.Cols(), dropOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
	dropInput.register(dropCmd)
	dropCmd.Flags().Float64Var(&dropThreshold, "threshold", 80, "drop columns with missing percentage strictly above this (overrides config)")
	dropCmd.Flags().StringVarP(&dropOutput, "output", "o", "", "optional path to write the remaining columns as CSV")
}
