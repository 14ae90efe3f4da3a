// Package report renders analysis results for the terminal.
// Simple streaming output, no complex TUI - just clean styled text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/schedtrace/schedtrace/pkg/analyze"
	"github.com/schedtrace/schedtrace/pkg/metrics"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

const noData = "-"

// PrintTraceReport writes one trace's summary table to w.
func PrintTraceReport(w io.Writer, report *analyze.TraceReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, accentStyle.Render(fmt.Sprintf("▸ %s METRICS", report.Policy)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  run %s, %d events", report.RunID, report.EventCount)))
	fmt.Fprintln(w)

	printRule(w)
	fmt.Fprintf(w, "  %-12s %12s %12s %10s %14s %9s\n",
		titleStyle.Render("task"), "avg exec", "avg resp", "miss", "total exec", "releases")
	printRule(w)

	shares := analyze.CPUShare(report)
	for _, task := range report.Tasks {
		s := report.Summaries[task]
		fmt.Fprintf(w, "  %-12s %12s %12s %10.3f %14s %9d\n",
			task,
			renderMean(s.MeanExec, s.HasExec),
			renderMean(s.MeanResponse, s.HasResponse),
			s.MissRatio,
			fmt.Sprintf("%.2f (%.1f%%)", s.TotalExec, shares[task]*100),
			s.Releases)
	}
	printRule(w)

	if report.HasWatchdog {
		fmt.Fprintf(w, "  %s %s\n",
			mutedStyle.Render("Watchdog avg interval:"),
			titleStyle.Render(fmt.Sprintf("%.2f ms", report.Watchdog)))
	} else {
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render("Watchdog avg interval: no data"))
	}

	PrintAnomalies(w, report)
}

// PrintAnomalies writes warning lines for discarded samples, if any.
func PrintAnomalies(w io.Writer, report *analyze.TraceReport) {
	for _, a := range report.Anomalies {
		fmt.Fprintf(w, "  %s %s\n", accentStyle.Render("⚠"), a.String())
	}
}

// PrintComparison writes the two-policy comparison to w.
func PrintComparison(w io.Writer, c *analyze.Comparison) {
	PrintTraceReport(w, c.Left)
	PrintTraceReport(w, c.Right)

	fmt.Fprintln(w)
	fmt.Fprintln(w, accentStyle.Render("▸ COMPARISON SUMMARY"))
	fmt.Fprintln(w)

	if c.ResponseVerdict != "" {
		fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), c.ResponseVerdict)
	} else {
		fmt.Fprintf(w, "  %s unable to compare mean response times (missing data)\n",
			mutedStyle.Render("–"))
	}

	if c.MissVerdict != "" {
		fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), c.MissVerdict)
	} else {
		fmt.Fprintf(w, "  %s unable to compare miss ratios (missing data)\n",
			mutedStyle.Render("–"))
	}
	fmt.Fprintln(w)
}

func renderMean(v float64, ok bool) string {
	if !ok {
		return noData
	}
	return fmt.Sprintf("%.2f", v)
}

func printRule(w io.Writer) {
	fmt.Fprintln(w, mutedStyle.Render("  "+strings.Repeat("─", 74)))
}

// Cell formats a summary value for tabular export, using the shared
// no-data marker for undefined means.
func Cell(v float64, ok bool) interface{} {
	if !ok {
		return noData
	}
	return v
}

// Row flattens a summary into export column order:
// task, avg exec, avg resp, miss ratio, total exec, releases.
func Row(s metrics.TaskSummary) []interface{} {
	return []interface{}{
		s.Task,
		Cell(s.MeanExec, s.HasExec),
		Cell(s.MeanResponse, s.HasResponse),
		s.MissRatio,
		s.TotalExec,
		s.Releases,
	}
}
