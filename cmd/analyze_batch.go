package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/eda"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abInput       inputFlags
	abMissingThr  float64
	abSkewThr     float64
	abOffset      float64
	abSequential  bool
	abOutlierThr  float64
	abOutDir      string
	abTransformed bool
	abQuiet       bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress, writing one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := runOptions(cmd, abMissingThr, abSkewThr, abOffset, abSequential, abOutlierThr)
		if err != nil {
			return err
		}
		if abTransformed && abOutDir == "" {
			return fmt.Errorf("--transformed requires --out-dir")
		}
		out := cmd.OutOrStdout()

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := abInput.load(cmd, path)
			if err != nil {
				return err
			}
			res, err := eda.NewProcessor(t, logging.L()).Run(opt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			md := res.Report.Markdown()

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			if err := utils.EnsureDir(abOutDir); err != nil {
				return err
			}
			base := reportBase(path, abInput.sheetName)
			outFile := utils.UniquePath(abOutDir, base, ".report.md")
			if filepath.Base(outFile) != base+".report.md" && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := writeOutput(outFile, []byte(md)); err != nil {
				return err
			}
			if abTransformed {
				csvFile := strings.TrimSuffix(outFile, ".report.md") + ".transformed.csv"
				if err := writeTable(res.Skew.Table, csvFile); err != nil {
					return err
				}
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and removes duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// reportBase is the file's base name without extension, plus a sheet tag when one was chosen.
func reportBase(path, sheetName string) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	if sheetName == "" {
		return safe
	}
	ss := utils.Slug(sheetName)
	if ss == "" {
		ss = "sheet"
	}
	return safe + "__sheet-" + ss
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInput.register(analyzeBatchCmd)
	registerAnalysisFlags(analyzeBatchCmd, &abMissingThr, &abSkewThr, &abOffset, &abSequential, &abOutlierThr)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for <name>.report.md files (prints reports when omitted)")
	analyzeBatchCmd.Flags().BoolVar(&abTransformed, "transformed", false, "also write <name>.transformed.csv next to each report")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
