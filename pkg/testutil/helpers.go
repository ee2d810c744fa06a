// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/valuecalc/pkg/output"
)

// FindReport finds a report by name in the reports slice.
// Returns a pointer to the report if found, nil otherwise.
func FindReport(reports []output.Report, name string) *output.Report {
	for i := range reports {
		if reports[i].Name == name {
			return &reports[i]
		}
	}
	return nil
}

// RowValue returns the value of the named calculation row in report. ok is
// false when the row is missing or has no value.
func RowValue(report *output.Report, calculation string) (value float64, ok bool) {
	if report == nil {
		return 0, false
	}
	for _, row := range report.Rows {
		if row.Name == calculation && row.Value != nil {
			return *row.Value, true
		}
	}
	return 0, false
}
