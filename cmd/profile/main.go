package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataprofile/internal/config"
	"dataprofile/internal/log"
)

// Exit codes (spec.md §6 CLI surface).
const (
	exitPass          = 0
	exitQualityFailed = 1
	exitError         = 2
)

func main() {
	defaults := config.LoadCLIDefaults()

	var outputPath string
	var outputFormat string
	var failOnMissing float64
	var tolerance float64

	rootCmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Profile a CSV/TSV/JSON/Parquet/Excel/Avro file in a single streaming pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runProfile(args[0], outputPath, outputFormat, failOnMissing, tolerance)
			if err != nil {
				log.Default.Error("%v", err)
			}
			os.Exit(code)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", defaults.OutputPath, "write the report to this path instead of stdout")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", defaults.OutputFormat, "report format: json|html|markdown")
	rootCmd.Flags().Float64Var(&failOnMissing, "fail-on-missing", defaults.FailOnMissing, "fail the quality gate if any column's missing percent exceeds this")
	rootCmd.Flags().Float64Var(&tolerance, "tolerance", defaults.Tolerance, "fail the quality gate if any column's outlier rate percent exceeds this")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
}
