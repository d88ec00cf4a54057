package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "missing_threshold: %.4g\n", c.MissingThreshold)
		fmt.Fprintf(out, "skew_threshold: %.4g\n", c.SkewThreshold)
		fmt.Fprintf(out, "skew_offset: %.4g\n", c.SkewOffset)
		fmt.Fprintf(out, "parallel_fit: %t\n", c.ParallelFit)
		fmt.Fprintf(out, "plot_columns: %d\n", c.PlotColumns)
		fmt.Fprintf(out, "plot_bins: %d\n", c.PlotBins)
		fmt.Fprintf(out, "plot_kde: %t\n", c.PlotKDE)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_json: %t\n", c.LogJSON)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "missing_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for missing_threshold: %w", err)
			}
			cfg.MissingThreshold = f
		case "skew_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for skew_threshold: %w", err)
			}
			cfg.SkewThreshold = f
		case "skew_offset":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for skew_offset: %w", err)
			}
			cfg.SkewOffset = f
		case "parallel_fit":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for parallel_fit: %w", err)
			}
			cfg.ParallelFit = b
		case "plot_columns":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for plot_columns: %w", err)
			}
			cfg.PlotColumns = i
		case "plot_bins":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for plot_bins: %w", err)
			}
			cfg.PlotBins = i
		case "plot_kde":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for plot_kde: %w", err)
			}
			cfg.PlotKDE = b
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_rows: %w", err)
			}
			cfg.MaxRows = i
		case "log_level":
			lvl := strings.ToLower(strings.TrimSpace(val))
			switch lvl {
			case "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
			cfg.LogLevel = lvl
		case "log_json":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for log_json: %w", err)
			}
			cfg.LogJSON = b
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
