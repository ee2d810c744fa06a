package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"go.uber.org/zap"
)

func tcoSolution() solution.Solution {
	return solution.Solution{
		Name: "Cooling TCO",
		Parameters: []solution.Parameter{
			{ID: "x", Name: "x", ProvidedBy: solution.ProvidedByUser},
			{ID: "y", Name: "y", ProvidedBy: solution.ProvidedByUser},
			{ID: "a", Name: "a", ProvidedBy: solution.ProvidedByCompany, Value: "2"},
		},
		Calculations: []solution.Calculation{
			{ID: "opex", Name: "opex", Formula: "a*x"},
			{ID: "capex", Name: "capex", Formula: "a*y"},
			{ID: "tco", Name: "TCO", Formula: "capex+opex", DisplayResult: true},
		},
	}
}

func TestEvaluateResolvesDependenciesInAnyOrder(t *testing.T) {
	payload := assembler.Assemble(tcoSolution(), solution.Inputs{"x": "10", "y": "15"})
	// TCO first so a single pass cannot succeed.
	params := payload.Parameters
	payload.Parameters = append([]assembler.Entry{params[len(params)-1]}, params[:len(params)-1]...)

	ev, err := New(zap.NewNop()).Evaluate(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := map[string]float64{"opex": 20, "capex": 30, "TCO": 50}
	for name, want := range expected {
		if got := ev.Values[name]; got != want {
			t.Errorf("%s = %v, expected %v", name, got, want)
		}
	}
	if len(ev.Unresolved) != 0 {
		t.Errorf("expected no unresolved entries, got %v", ev.Unresolved)
	}
}

func TestEvaluateUnresolved(t *testing.T) {
	payload := &assembler.Payload{
		Inputs: map[string]float64{"a": 1},
		Parameters: []assembler.Entry{
			{Name: "a", Type: constants.PayloadTypeUser},
			{Name: "missing", Type: constants.PayloadTypeUser},
			{Name: "uses_missing", Type: constants.PayloadTypeCalculation, Formula: "missing * 2"},
			{Name: "loop_a", Type: constants.PayloadTypeCalculation, Formula: "loop_b + 1"},
			{Name: "loop_b", Type: constants.PayloadTypeCalculation, Formula: "loop_a + 1"},
			{Name: "ratio", Type: constants.PayloadTypeCalculation, Formula: "a / 4"},
		},
		Target: []string{"uses_missing", "ratio", "loop_a"},
	}

	result, err := New(nil).Result(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result[0] != nil || result[2] != nil {
		t.Errorf("expected unresolved targets to be nil, got %v", result)
	}
	if result[1] != 0.25 {
		t.Errorf("ratio = %v, expected 0.25", result[1])
	}
}

func TestEvaluateNilPayload(t *testing.T) {
	if _, err := New(nil).Evaluate(nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}

func TestHandlerRoundTrip(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	client := calcclient.New(zap.NewNop(), calcclient.Options{BaseURL: srv.URL})
	payload := assembler.Assemble(tcoSolution(), solution.Inputs{"x": "10", "y": "15"})

	results, err := client.Calculate(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results["TCO"] != 50 {
		t.Fatalf("expected {TCO:50}, got %v", results)
	}
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	handler := New(nil).Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, constants.CalculatePath, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, expected 405", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, constants.CalculatePath, bytes.NewBufferString("{")))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed status = %d, expected 400", rr.Code)
	}
}

func TestHandlerResponseShape(t *testing.T) {
	body, _ := json.Marshal(assembler.Payload{
		Inputs: map[string]float64{"x": 3},
		Parameters: []assembler.Entry{
			{Name: "double", Type: constants.PayloadTypeCalculation, Formula: "x*2"},
		},
		Target: []string{"double", "nothing"},
	})

	rr := httptest.NewRecorder()
	New(nil).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, constants.CalculatePath, bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Result []interface{} `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Result) != 2 || resp.Result[0] != 6.0 || resp.Result[1] != nil {
		t.Fatalf("unexpected result %v", resp.Result)
	}
}
