package config

import (
	"path/filepath"
	"testing"

	"github.com/iwvelando/valuecalc/internal/solution"
)

func TestParseWorkbook(t *testing.T) {
	wb, err := ParseWorkbook([]byte(`
solution:
  name: Cooling TCO
  parameters:
    - id: x
      name: x
      provided_by: user
    - id: a
      name: a
      provided_by: company
      value: 2
  calculations:
    - id: tco
      name: TCO
      formula: a*x
      display_result: true
inputs:
  x: 10
variants:
  - solution:
      name: Liquid
  - name: custom
    solution:
      name: Air
  - solution: {}
`))
	if err != nil {
		t.Fatalf("ParseWorkbook() error = %v", err)
	}
	if wb.Solution.Name != "Cooling TCO" || len(wb.Solution.Parameters) != 2 {
		t.Fatalf("unexpected solution %+v", wb.Solution)
	}
	if wb.Solution.Parameters[1].Value != "2" {
		t.Errorf("company value = %q, expected 2", wb.Solution.Parameters[1].Value)
	}
	if wb.Inputs.Get("x") != "10" {
		t.Errorf("input x = %q, expected 10", wb.Inputs.Get("x"))
	}

	names := []string{"Liquid", "custom", "variant 3"}
	for i, want := range names {
		if wb.Variants[i].Name != want {
			t.Errorf("variant %d name = %q, expected %q", i, wb.Variants[i].Name, want)
		}
	}
}

func TestParseWorkbookInvalid(t *testing.T) {
	if _, err := ParseWorkbook([]byte("solution: [")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadWorkbookFixture(t *testing.T) {
	wb, err := LoadWorkbook(filepath.Join("..", "..", "test", "tco_workbook.yaml"))
	if err != nil {
		t.Fatalf("LoadWorkbook() error = %v", err)
	}
	if len(wb.Solution.Parameters) == 0 || len(wb.Solution.Calculations) == 0 {
		t.Fatalf("fixture solution is empty: %+v", wb.Solution)
	}
	if err := wb.Solution.Validate(); err != nil {
		t.Fatalf("fixture solution is invalid: %v", err)
	}
}

func TestSetInputs(t *testing.T) {
	wb := &Workbook{}
	if err := wb.SetInputs([]string{"x=10", " y = 3"}); err != nil {
		t.Fatalf("SetInputs() error = %v", err)
	}
	want := solution.Inputs{"x": "10", "y": " 3"}
	if wb.Inputs["x"] != want["x"] || wb.Inputs["y"] != want["y"] {
		t.Errorf("Inputs = %v, expected %v", wb.Inputs, want)
	}
	if err := wb.SetInputs([]string{"novalue"}); err == nil {
		t.Error("expected error for assignment without '='")
	}
	if err := wb.SetInputs([]string{"=5"}); err == nil {
		t.Error("expected error for assignment without id")
	}
}

func TestSetInputsReachesVariants(t *testing.T) {
	wb := &Workbook{
		Inputs: solution.Inputs{"it-load": "100"},
		Variants: []WorkbookVariant{
			{Name: "air", Inputs: solution.Inputs{"it-load": "80"}},
			{Name: "immersion"},
		},
	}
	if err := wb.SetInputs([]string{"it-load=250"}); err != nil {
		t.Fatalf("SetInputs() error = %v", err)
	}
	if wb.Inputs["it-load"] != "250" || wb.Variants[0].Inputs["it-load"] != "250" {
		t.Errorf("override not applied everywhere: %v %v", wb.Inputs, wb.Variants[0].Inputs)
	}
	if wb.Variants[1].Inputs != nil {
		t.Errorf("variant without inputs gained its own: %v", wb.Variants[1].Inputs)
	}
}

func TestCompareSet(t *testing.T) {
	wb := &Workbook{
		Solution: solution.Solution{Name: "Immersion Cooling"},
		Inputs:   solution.Inputs{"country": "UK", "it-load": "100"},
		Variants: []WorkbookVariant{
			{Name: "air", Inputs: solution.Inputs{"it-load": "80"}},
			{Name: "immersion"},
		},
	}

	set := wb.CompareSet()
	if len(set) != 3 {
		t.Fatalf("expected base plus two variants, got %d", len(set))
	}

	tests := []struct {
		name    string
		country string
		itLoad  string
	}{
		{name: "Immersion Cooling", country: "UK", itLoad: "100"},
		{name: "air", country: "UK", itLoad: "80"},
		{name: "immersion", country: "UK", itLoad: "100"},
	}
	for i, tt := range tests {
		v := set[i]
		if v.Name != tt.name {
			t.Errorf("entry %d name = %q, expected %q", i, v.Name, tt.name)
		}
		if v.Inputs.Get("country") != tt.country || v.Inputs.Get("it-load") != tt.itLoad {
			t.Errorf("%s inputs = %v", v.Name, v.Inputs)
		}
	}

	// Variant inputs are copies, the workbook stays untouched.
	set[2].Inputs["it-load"] = "1"
	if wb.Inputs["it-load"] != "100" {
		t.Errorf("CompareSet aliased the workbook inputs")
	}
}

func TestCompareSetUnnamedBase(t *testing.T) {
	set := (&Workbook{}).CompareSet()
	if len(set) != 1 || set[0].Name != "base" {
		t.Fatalf("unexpected set %+v", set)
	}
}
