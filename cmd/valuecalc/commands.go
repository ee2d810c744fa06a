package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/config"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoParameters = errors.New("solution has no parameters, nothing to calculate")

// loadWorkbook reads the workbook named on the command line and applies any
// --set overrides.
func loadWorkbook(path string, sets []string) (*config.Workbook, error) {
	wb, err := config.LoadWorkbook(path)
	if err != nil {
		return nil, err
	}
	if err := wb.SetInputs(sets); err != nil {
		return nil, err
	}
	return wb, nil
}

func newAssembleCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "assemble WORKBOOK",
		Short: "Print the calculation request built from a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadWorkbook(args[0], sets)
			if err != nil {
				return err
			}
			payload := assembler.NewBuilder(a.logger).Assemble(wb.Solution, wb.Inputs)
			if payload == nil {
				return errNoParameters
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override an input as id=value (repeatable)")
	return cmd
}

func newCalculateCmd(a *app) *cobra.Command {
	var (
		sets  []string
		local bool
	)
	cmd := &cobra.Command{
		Use:   "calculate WORKBOOK",
		Short: "Calculate a workbook's solution against the calculation service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadWorkbook(args[0], sets)
			if err != nil {
				return err
			}
			for _, warning := range wb.Solution.Warnings() {
				a.logger.Warn(warning, zap.String("op", "main.calculate"))
			}

			payload := assembler.NewBuilder(a.logger).Assemble(wb.Solution, wb.Inputs)
			if payload == nil {
				return errNoParameters
			}

			client, stop, err := a.newClient(local)
			if err != nil {
				return err
			}
			defer stop()

			results, err := client.Calculate(cmd.Context(), payload)
			if err != nil {
				return fmt.Errorf("calculation failed: %w", err)
			}

			sol := wb.Solution.Clone()
			sol.ApplyResults(payload.Target, results)
			return a.writeReports(cmd.OutOrStdout(), []output.Report{output.NewReport(sol.Name, sol)})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override an input as id=value (repeatable)")
	cmd.Flags().BoolVar(&local, "local-engine", false, "calculate with the built-in engine instead of the configured service")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		sets     []string
		local    bool
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "compare WORKBOOK",
		Short: "Calculate a workbook's solution and its variants side by side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadWorkbook(args[0], sets)
			if err != nil {
				return err
			}
			if len(wb.Variants) == 0 {
				return fmt.Errorf("workbook %s has no variants to compare", args[0])
			}

			variants := wb.CompareSet()

			client, stop, err := a.newClient(local)
			if err != nil {
				return err
			}
			defer stop()

			results := calcclient.Compare(cmd.Context(), client, variants)
			reports := make([]output.Report, len(results))
			for i, res := range results {
				sol := variants[i].Solution.Clone()
				if res.Payload != nil {
					sol.ApplyResults(res.Payload.Target, res.Results)
				}
				reports[i] = output.NewReport(res.Name, sol)
				if res.Err != nil {
					reports[i].Error = res.Err.Error()
				}
			}

			if xlsxPath != "" {
				if err := writeXLSXFile(xlsxPath, reports); err != nil {
					return err
				}
				a.logger.Info("comparison workbook written",
					zap.String("op", "main.compare"),
					zap.String("path", xlsxPath),
				)
			}
			return a.writeReports(cmd.OutOrStdout(), reports)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override an input as id=value for the solution and every variant (repeatable)")
	cmd.Flags().BoolVar(&local, "local-engine", false, "calculate with the built-in engine instead of the configured service")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the comparison to this .xlsx file")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate WORKBOOK",
		Short: "Check a workbook's solution and variants for errors and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := config.LoadWorkbook(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := false
			check := func(name string, validate func() error, warnings []string) {
				if err := validate(); err != nil {
					failed = true
					fmt.Fprintf(out, "%s: invalid: %v\n", name, err)
				} else {
					fmt.Fprintf(out, "%s: ok\n", name)
				}
				for _, w := range warnings {
					fmt.Fprintf(out, "%s: warning: %s\n", name, w)
				}
			}

			check(wb.Solution.Name, wb.Solution.Validate, wb.Solution.Warnings())
			for i := range wb.Variants {
				v := &wb.Variants[i]
				check(v.Name, v.Solution.Validate, v.Solution.Warnings())
			}
			if failed {
				return fmt.Errorf("workbook %s failed validation", args[0])
			}
			return nil
		},
	}
}

func (a *app) writeReports(w io.Writer, reports []output.Report) error {
	switch a.outputFormat {
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, reports)
	default:
		output.PrettyFormat(w, reports)
		return nil
	}
}

func writeXLSXFile(path string, reports []output.Report) error {
	var buf bytes.Buffer
	if err := output.WriteXLSX(&buf, reports); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
