package cmd

import (
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	missInput   inputFlags
	missDetails string
)

var missingCmd = &cobra.Command{
	Use:   "missing <file>",
	Short: "Report missing values per column, most-missing first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := missInput.load(cmd, args[0])
		if err != nil {
			return err
		}
		rep, err := eda.NewProcessor(t, logging.L()).MissingValues()
		if err != nil {
			return err
		}
		if err := rep.Write(cmd.OutOrStdout()); err != nil {
			return err
		}
		if missDetails != "" {
			b, err := utils.MarshalForPath(missDetails, rep.Stats)
			if err != nil {
				return err
			}
			if err := writeOutput(missDetails, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote missing-value details to %s\n", missDetails)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(missingCmd)
	missInput.register(missingCmd)
	missingCmd.Flags().StringVar(&missDetails, "details", "", "optional path to write per-column stats (JSON, or YAML for .yaml/.yml)")
}
