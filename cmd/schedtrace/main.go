// schedtrace - RTOS scheduler trace analyzer
// Reconstructs per-task execution, response, and deadline-miss metrics
// from firmware serial event logs and compares scheduling policies.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	configPath string

	policyFlag string
	jsonOutput bool
	exportPath string

	leftPolicy  string
	rightPolicy string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "schedtrace",
	Short: "schedtrace - Analyze real-time scheduler traces",
	Long: `schedtrace reconstructs per-task execution times, response times,
release counts, and deadline-miss ratios from timestamped scheduler event
traces, and compares two scheduling-policy runs (e.g. EDF vs RM).

Input lines carry CSV-like records emitted by the firmware logger:
  <timestamp_ms>,<START|COMPLETE|RELEASE|MISS|WDT_PET|INFO>,<task>[,<extra>]
Lines without a record are skipped.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trace-file>",
	Short: "Analyze a single trace",
	Long: `Analyze one scheduler trace and print the per-task summary table.

Examples:
  schedtrace analyze edf_log.csv
  schedtrace analyze --policy EDF --json edf_log.csv
  schedtrace analyze edf_log.csv --export edf.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare <left-trace> <right-trace>",
	Short: "Compare two scheduling-policy traces",
	Long: `Analyze two traces and print per-policy summary tables plus a
comparison verdict on mean response time and deadline tolerance.

Examples:
  schedtrace compare edf_log.csv rm_log.csv
  schedtrace compare --left EDF --right RM edf_log.csv rm_log.csv
  schedtrace compare edf_log.csv rm_log.csv --export comparison.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var watchCmd = &cobra.Command{
	Use:   "watch <trace-file>...",
	Short: "Re-analyze traces as the capture files grow",
	Long: `Watch one or two trace files and re-run the analysis whenever the
serial capture appends to them. With two files the comparison is
re-printed on every change.

Examples:
  schedtrace watch edf_log.csv
  schedtrace watch edf_log.csv rm_log.csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWatch,
}

var exportCmd = &cobra.Command{
	Use:   "export <trace-file>...",
	Short: "Export summary tables to an xlsx workbook",
	Long: `Analyze one or two traces and write the summary (and comparison,
with two traces) tables to an Excel workbook.

Examples:
  schedtrace export -o report.xlsx edf_log.csv
  schedtrace export -o comparison.xlsx edf_log.csv rm_log.csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.schedtrace/config.yaml)")

	analyzeCmd.Flags().StringVar(&policyFlag, "policy", "", "Policy label for the trace (default: derived from file name)")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	analyzeCmd.Flags().StringVar(&exportPath, "export", "", "Also write the report to an xlsx workbook")

	compareCmd.Flags().StringVar(&leftPolicy, "left", "", "Policy label for the left trace")
	compareCmd.Flags().StringVar(&rightPolicy, "right", "", "Policy label for the right trace")
	compareCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the comparison as JSON")
	compareCmd.Flags().StringVar(&exportPath, "export", "", "Also write the comparison to an xlsx workbook")

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output workbook path (required)")
	exportCmd.Flags().StringVar(&leftPolicy, "left", "", "Policy label for the first trace")
	exportCmd.Flags().StringVar(&rightPolicy, "right", "", "Policy label for the second trace")
	exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
}
