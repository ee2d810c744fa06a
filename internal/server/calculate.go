package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/config"
	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/pkg/formula"
	"github.com/iwvelando/valuecalc/pkg/output"
	"go.uber.org/zap"
)

const errNoParameters = "solution has no parameters to calculate"

type calculateRequest struct {
	Solution solution.Solution `json:"solution"`
	Inputs   solution.Inputs   `json:"inputs"`
}

type previewRequest struct {
	Solution    solution.Solution    `json:"solution"`
	Inputs      solution.Inputs      `json:"inputs"`
	Calculation solution.Calculation `json:"calculation"`
}

type compareRequest struct {
	Variants []variantRequest `json:"variants"`
}

type variantRequest struct {
	Name     string            `json:"name"`
	Solution solution.Solution `json:"solution"`
	Inputs   solution.Inputs   `json:"inputs"`
}

type calculateResponse struct {
	Target   []string           `json:"target"`
	Results  map[string]float64 `json:"results"`
	Solution solution.Solution  `json:"solution"`
	Report   output.Report      `json:"report"`
	CSV      string             `json:"csv"`
	Warnings []string           `json:"warnings,omitempty"`
	Duration string             `json:"duration"`
}

type previewResponse struct {
	Name     string          `json:"name"`
	Result   *float64        `json:"result"`
	Status   solution.Status `json:"status"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

type compareResponse struct {
	Variants []variantResponse `json:"variants"`
	Reports  []output.Report   `json:"reports"`
	CSV      string            `json:"csv"`
	Duration string            `json:"duration"`
}

type variantResponse struct {
	Name    string             `json:"name"`
	Results map[string]float64 `json:"results"`
	Error   string             `json:"error,omitempty"`
}

func (h *handler) handleAssemble(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAssemble"
	var req calculateRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	payload := assembler.NewBuilder(h.logger).Assemble(req.Solution, req.Inputs)
	if payload == nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, errNoParameters, op)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()
	var req calculateRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	resp, status, err := h.calculate(r.Context(), req.Solution, req.Inputs, op)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	resp.Duration = time.Since(start).String()

	h.logger.Info("calculation completed",
		zap.String("op", op),
		zap.String("solution", req.Solution.Name),
		zap.Int("results", len(resp.Results)),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// calculate runs one solution and returns the response together with the
// status to use when err is non-nil.
func (h *handler) calculate(ctx context.Context, sol solution.Solution, inputs solution.Inputs, op string) (calculateResponse, int, error) {
	payload := assembler.NewBuilder(h.logger).Assemble(sol, inputs)
	if payload == nil {
		return calculateResponse{}, http.StatusUnprocessableEntity, errors.New(errNoParameters)
	}

	results, err := h.client.Calculate(ctx, payload)
	if err != nil {
		return calculateResponse{}, http.StatusBadGateway, fmt.Errorf("calculation failed: %w", err)
	}

	sol = sol.Clone()
	sol.ApplyResults(payload.Target, results)
	report := output.NewReport(sol.Name, sol)

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, []output.Report{report}); err != nil {
		h.logger.Warn("failed to render CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	return calculateResponse{
		Target:   payload.Target,
		Results:  results,
		Solution: sol,
		Report:   report,
		CSV:      csvBuf.String(),
		Warnings: sol.Warnings(),
	}, http.StatusOK, nil
}

func (h *handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreview"
	start := time.Now()
	var req previewRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if err := solution.ValidateCalculation(req.Calculation); err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}

	payload := assembler.NewBuilder(h.logger).AssemblePreview(req.Solution, req.Inputs, req.Calculation)
	if payload == nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, errNoParameters, op)
		return
	}

	resp := previewResponse{Name: formula.Sanitize(req.Calculation.Name), Status: solution.StatusError}
	results, err := h.client.Calculate(r.Context(), payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("calculation failed: %v", err), op)
		return
	}
	if v, ok := results[resp.Name]; ok {
		resp.Result = &v
		resp.Status = solution.StatusValid
	}

	preview := req.Solution.Clone()
	preview.UpsertCalculation(req.Calculation)
	resp.Warnings = preview.Warnings()
	resp.Duration = time.Since(start).String()
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	start := time.Now()
	var req compareRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if len(req.Variants) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "at least one variant is required", op)
		return
	}

	variants := make([]calcclient.Variant, len(req.Variants))
	for i, v := range req.Variants {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			name = v.Solution.Name
		}
		variants[i] = calcclient.Variant{Name: name, Solution: v.Solution, Inputs: v.Inputs}
	}

	reports, outcomes := h.compare(r.Context(), variants)

	if r.URL.Query().Get("format") == "xlsx" {
		h.writeXLSX(w, reports, op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, reports); err != nil {
		h.logger.Warn("failed to render CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	h.logger.Info("comparison completed",
		zap.String("op", op),
		zap.Int("variants", len(variants)),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, compareResponse{
		Variants: outcomes,
		Reports:  reports,
		CSV:      csvBuf.String(),
		Duration: elapsed.String(),
	})
}

func (h *handler) compare(ctx context.Context, variants []calcclient.Variant) ([]output.Report, []variantResponse) {
	results := calcclient.Compare(ctx, h.client, variants)

	reports := make([]output.Report, len(results))
	outcomes := make([]variantResponse, len(results))
	for i, res := range results {
		sol := variants[i].Solution.Clone()
		if res.Payload != nil {
			sol.ApplyResults(res.Payload.Target, res.Results)
		}
		reports[i] = output.NewReport(res.Name, sol)
		outcomes[i] = variantResponse{Name: res.Name, Results: res.Results}
		if res.Err != nil {
			reports[i].Error = res.Err.Error()
			outcomes[i].Error = res.Err.Error()
		}
	}
	return reports, outcomes
}

func (h *handler) writeXLSX(w http.ResponseWriter, reports []output.Report, op string) {
	var buf bytes.Buffer
	if err := output.WriteXLSX(&buf, reports); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build spreadsheet: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="comparison.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, &buf); err != nil {
		h.logger.Error("failed to write spreadsheet", zap.String("op", op), zap.Error(err))
	}
}

// handleWorkbook accepts a multipart upload of a workbook file. A workbook
// with variants is compared against its own solution, otherwise its
// solution is calculated.
func (h *handler) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWorkbook"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing workbook file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read workbook: %v", err), op)
		return
	}

	wb, err := config.ParseWorkbook(data)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if len(wb.Variants) == 0 {
		resp, status, err := h.calculate(r.Context(), wb.Solution, wb.Inputs, op)
		if err != nil {
			h.respondErrorWithOp(w, status, err.Error(), op)
			return
		}
		resp.Duration = time.Since(start).String()
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	reports, outcomes := h.compare(r.Context(), wb.CompareSet())

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, reports); err != nil {
		h.logger.Warn("failed to render CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	h.writeJSON(w, http.StatusOK, compareResponse{
		Variants: outcomes,
		Reports:  reports,
		CSV:      csvBuf.String(),
		Duration: time.Since(start).String(),
	})
}
