package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/valuecalc/pkg/mathutil"
	"github.com/xuri/excelize/v2"
)

// ComparisonSheet is the name of the sheet written by WriteXLSX.
const ComparisonSheet = "Comparison"

// WriteXLSX writes the reports side by side as a spreadsheet: one row per
// calculation, one value column per report, and difference columns for
// every report after the first.
func WriteXLSX(w io.Writer, reports []Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), ComparisonSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sheet := ComparisonSheet

	headers := []string{"Calculation", "Units"}
	for _, report := range reports {
		headers = append(headers, report.Name)
	}
	for _, report := range reportsAfterFirst(reports) {
		headers = append(headers, fmt.Sprintf("%s vs %s", report.Name, reports[0].Name), fmt.Sprintf("%s vs %s (%%)", report.Name, reports[0].Name))
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, name := range rowNames(reports) {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, name)
		set(2, unitsFor(reports, name))
		col := 3
		values := make([]*float64, len(reports))
		for j, report := range reports {
			if row, ok := report.find(name); ok {
				values[j] = row.Value
			}
			set(col, derefFloat(values[j]))
			col++
		}
		for j := 1; j < len(reports); j++ {
			if values[0] == nil || values[j] == nil {
				set(col, "")
				set(col+1, "")
			} else {
				set(col, *values[j]-*values[0])
				set(col+1, mathutil.Round(mathutil.PercentDifference(*values[0], *values[j]), 2))
			}
			col += 2
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func reportsAfterFirst(reports []Report) []Report {
	if len(reports) < 2 {
		return nil
	}
	return reports[1:]
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
