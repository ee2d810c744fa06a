// Package output provides utilities for formatting and displaying
// calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Row is one displayed calculation.
type Row struct {
	Name   string          `json:"name"`
	Value  *float64        `json:"value"`
	Units  string          `json:"units,omitempty"`
	Status solution.Status `json:"status,omitempty"`
}

// Report is the result of calculating one solution or variant. Error is set
// when the calculation could not be performed at all.
type Report struct {
	Name  string `json:"name"`
	Rows  []Row  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// NewReport collects the display_result calculations of sol after results
// have been applied to it.
func NewReport(name string, sol solution.Solution) Report {
	report := Report{Name: name, Rows: []Row{}}
	for _, c := range sol.Calculations {
		if !c.DisplayResult {
			continue
		}
		report.Rows = append(report.Rows, Row{Name: c.Name, Value: c.Result, Units: c.Units, Status: c.Status})
	}
	return report
}

// PrettyFormat writes a human-readable rather than machine-readable table.
// With more than one report a comparison against the first follows.
func PrettyFormat(w io.Writer, reports []Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		fmt.Fprintf(w, "--- Results for %s ---\n", report.Name)
		if report.Error != "" {
			fmt.Fprintf(w, "error: %s\n", report.Error)
		} else {
			fmt.Fprintf(w, "Calculation | Value | Units | Status\n")
			fmt.Fprintf(w, "___________ | _____ | _____ | ______\n")
			for _, row := range report.Rows {
				_, _ = p.Fprintf(w, "%s | %s | %s | %s\n", row.Name, prettyValue(p, row.Value), row.Units, row.Status)
			}
		}
		if i < len(reports)-1 {
			fmt.Fprintf(w, "\n")
		}
	}

	if len(reports) > 1 {
		fmt.Fprintf(w, "\n")
		prettyComparison(w, p, reports)
	}
}

func prettyComparison(w io.Writer, p *message.Printer, reports []Report) {
	base := reports[0]
	fmt.Fprintf(w, "--- Comparison against %s ---\n", base.Name)
	fmt.Fprintf(w, "Variant | Calculation | Value | Difference | Percent\n")
	fmt.Fprintf(w, "_______ | ___________ | _____ | __________ | _______\n")
	for _, other := range reports[1:] {
		for _, row := range other.Rows {
			baseRow, ok := base.find(row.Name)
			if !ok || baseRow.Value == nil || row.Value == nil {
				_, _ = p.Fprintf(w, "%s | %s | %s | - | -\n", other.Name, row.Name, prettyValue(p, row.Value))
				continue
			}
			diff := *row.Value - *baseRow.Value
			pct := mathutil.PercentDifference(*baseRow.Value, *row.Value)
			_, _ = p.Fprintf(w, "%s | %s | %.2f | %+.2f | %+.1f%%\n", other.Name, row.Name, *row.Value, diff, pct)
		}
	}
}

func prettyValue(p *message.Printer, v *float64) string {
	if v == nil {
		return "-"
	}
	return p.Sprintf("%.2f", *v)
}

func (r Report) find(name string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return Row{}, false
}

// CsvFormat writes one line per calculation with a value column per report.
func CsvFormat(w io.Writer, reports []Report) error {
	cw := csv.NewWriter(w)

	header := []string{"calculation", "units"}
	for _, report := range reports {
		header = append(header, fmt.Sprintf("value (%s)", report.Name))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, name := range rowNames(reports) {
		record := []string{name, unitsFor(reports, name)}
		for _, report := range reports {
			cell := ""
			if row, ok := report.find(name); ok && row.Value != nil {
				cell = strconv.FormatFloat(mathutil.Round(*row.Value, 2), 'f', 2, 64)
			}
			record = append(record, cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the reports as indented JSON.
func JSONFormat(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// rowNames returns every calculation name across reports in first-seen order.
func rowNames(reports []Report) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, report := range reports {
		for _, row := range report.Rows {
			if _, ok := seen[row.Name]; ok {
				continue
			}
			seen[row.Name] = struct{}{}
			names = append(names, row.Name)
		}
	}
	return names
}

func unitsFor(reports []Report, name string) string {
	for _, report := range reports {
		if row, ok := report.find(name); ok && row.Units != "" {
			return row.Units
		}
	}
	return ""
}
