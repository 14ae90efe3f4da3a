package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/schedtrace/schedtrace/pkg/analyze"
)

var summaryHeader = []interface{}{
	"task", "avg_exec_time_ms", "avg_response_ms", "miss_ratio",
	"total_exec_time_ms", "release_count",
}

// ExportWorkbook writes one sheet per trace report, plus a comparison
// sheet when two reports are given, to an .xlsx workbook at path.
func ExportWorkbook(path string, reports ...*analyze.TraceReport) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, report := range reports {
		sheet := sheetName(report, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("xlsx: add sheet: %w", err)
			}
		}
		if err := writeSummarySheet(f, sheet, report); err != nil {
			return err
		}
	}

	if len(reports) == 2 {
		if err := writeComparisonSheet(f, analyze.Compare(reports[0], reports[1])); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, report *analyze.TraceReport) error {
	if err := setRow(f, sheet, 1, summaryHeader); err != nil {
		return err
	}
	for i, task := range report.Tasks {
		if err := setRow(f, sheet, i+2, Row(report.Summaries[task])); err != nil {
			return err
		}
	}

	row := len(report.Tasks) + 3
	wdt := Cell(report.Watchdog, report.HasWatchdog)
	if err := setRow(f, sheet, row, []interface{}{"watchdog_avg_interval_ms", wdt}); err != nil {
		return err
	}
	return setRow(f, sheet, row+1, []interface{}{"run_id", report.RunID})
}

func writeComparisonSheet(f *excelize.File, c *analyze.Comparison) error {
	const sheet = "Comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: add sheet: %w", err)
	}

	header := []interface{}{
		"task",
		c.Left.Policy + "_avg_response_ms", c.Right.Policy + "_avg_response_ms",
		c.Left.Policy + "_miss_ratio", c.Right.Policy + "_miss_ratio",
		c.Left.Policy + "_release_count", c.Right.Policy + "_release_count",
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, task := range c.Tasks {
		ls, lok := c.Left.Summaries[task]
		rs, rok := c.Right.Summaries[task]
		row := []interface{}{
			task,
			Cell(ls.MeanResponse, lok && ls.HasResponse),
			Cell(rs.MeanResponse, rok && rs.HasResponse),
			Cell(ls.MissRatio, lok),
			Cell(rs.MissRatio, rok),
			ls.Releases,
			rs.Releases,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	row := len(c.Tasks) + 3
	if c.ResponseVerdict != "" {
		if err := setRow(f, sheet, row, []interface{}{c.ResponseVerdict}); err != nil {
			return err
		}
		row++
	}
	if c.MissVerdict != "" {
		return setRow(f, sheet, row, []interface{}{c.MissVerdict})
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", row, err)
	}
	return nil
}

func sheetName(report *analyze.TraceReport, i int) string {
	if report.Policy != "" {
		return report.Policy
	}
	return fmt.Sprintf("Trace%d", i+1)
}
