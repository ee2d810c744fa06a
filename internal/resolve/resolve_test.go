package resolve

import (
	"math"
	"testing"

	"github.com/iwvelando/valuecalc/internal/solution"
)

func countryFilter() solution.Parameter {
	return solution.Parameter{ID: "country", Name: "Country", ProvidedBy: solution.ProvidedByUser, DisplayType: solution.DisplayFilter}
}

func electricityPrice(options ...solution.DropdownOption) solution.Parameter {
	return solution.Parameter{
		ID:              "price",
		Name:            "Electricity Price",
		ProvidedBy:      solution.ProvidedByCompany,
		DisplayType:     solution.DisplayDropdown,
		DropdownOptions: options,
	}
}

func TestDropdownColonPrefixViaCountryFilter(t *testing.T) {
	price := electricityPrice(solution.DropdownOption{Key: "UK: 181", Value: "0.30"})
	siblings := []solution.Parameter{countryFilter(), price}
	inputs := solution.Inputs{"country": "UK"}

	r := Resolve(price, siblings, inputs)
	if !r.OK || r.Value != 0.30 {
		t.Fatalf("Resolve() = %+v, expected 0.30", r)
	}
	if r.Source != SourceFilter || r.Strategy != "colon-prefix" {
		t.Errorf("Resolve() source = %s/%s, expected filter/colon-prefix", r.Source, r.Strategy)
	}
}

func TestDropdownFallsBackToSelectedKey(t *testing.T) {
	price := electricityPrice(
		solution.DropdownOption{Key: "Low", Value: "0.10"},
		solution.DropdownOption{Key: "High", Value: "0.40"},
	)
	price.ProvidedBy = solution.ProvidedByUser
	siblings := []solution.Parameter{countryFilter(), price}

	tests := []struct {
		name     string
		inputs   solution.Inputs
		expected float64
		ok       bool
	}{
		{"Filter misses, key selected", solution.Inputs{"country": "Brazil", "price": "high"}, 0.40, true},
		{"No filter selection", solution.Inputs{"price": "Low"}, 0.10, true},
		{"Nothing selected", solution.Inputs{}, 0, false},
		{"Unknown key", solution.Inputs{"price": "Medium"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Value(price, siblings, tt.inputs)
			if ok != tt.ok || v != tt.expected {
				t.Errorf("Value() = %v, %t; expected %v, %t", v, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestDropdownFilterWinsOverSelectedKey(t *testing.T) {
	price := electricityPrice(
		solution.DropdownOption{Key: "UK", Value: "0.30"},
		solution.DropdownOption{Key: "FR", Value: "0.20"},
	)
	price.Value = "FR"
	siblings := []solution.Parameter{countryFilter(), price}

	v, ok := Value(price, siblings, solution.Inputs{"country": "uk"})
	if !ok || v != 0.30 {
		t.Errorf("Value() = %v, %t; expected 0.30 from the filter", v, ok)
	}

	v, ok = Value(price, siblings, solution.Inputs{})
	if !ok || v != 0.20 {
		t.Errorf("Value() = %v, %t; expected 0.20 from the authored key", v, ok)
	}
}

func TestDropdownUnparseableFilterMatchFallsBack(t *testing.T) {
	price := electricityPrice(
		solution.DropdownOption{Key: "UK", Value: "n/a"},
		solution.DropdownOption{Key: "Default", Value: "0.25"},
	)
	price.Value = "Default"
	siblings := []solution.Parameter{countryFilter(), price}

	v, ok := Value(price, siblings, solution.Inputs{"country": "UK"})
	if !ok || v != 0.25 {
		t.Errorf("Value() = %v, %t; expected fallback 0.25", v, ok)
	}
}

func TestFilterNeverResolves(t *testing.T) {
	filter := countryFilter()
	filter.Value = "42"
	if _, ok := Value(filter, []solution.Parameter{filter}, solution.Inputs{"country": "7"}); ok {
		t.Error("filter parameter resolved to a value")
	}
}

func TestFilterWithoutCountryInNameIsIgnored(t *testing.T) {
	region := solution.Parameter{ID: "region", Name: "Region", ProvidedBy: solution.ProvidedByUser, DisplayType: solution.DisplayFilter}
	price := electricityPrice(solution.DropdownOption{Key: "EU", Value: "0.5"})
	siblings := []solution.Parameter{region, price}

	if _, ok := Value(price, siblings, solution.Inputs{"region": "EU"}); ok {
		t.Error("non-country filter steered resolution")
	}
}

func TestDirectValues(t *testing.T) {
	tests := []struct {
		name     string
		param    solution.Parameter
		inputs   solution.Inputs
		expected float64
		ok       bool
		source   Source
	}{
		{
			name:     "User input",
			param:    solution.Parameter{ID: "x", ProvidedBy: solution.ProvidedByUser},
			inputs:   solution.Inputs{"x": "10"},
			expected: 10, ok: true, source: SourceInput,
		},
		{
			name:     "User default when input blank",
			param:    solution.Parameter{ID: "x", ProvidedBy: solution.ProvidedByUser, Value: "12"},
			inputs:   solution.Inputs{"x": " "},
			expected: 12, ok: true, source: SourceStatic,
		},
		{
			name:     "User test value ignored",
			param:    solution.Parameter{ID: "x", ProvidedBy: solution.ProvidedByUser, TestValue: "5"},
			inputs:   solution.Inputs{},
			ok:       false, source: SourceNone,
		},
		{
			name:     "Company static value",
			param:    solution.Parameter{ID: "a", ProvidedBy: solution.ProvidedByCompany, Value: "2"},
			inputs:   solution.Inputs{"a": "99"},
			expected: 2, ok: true, source: SourceStatic,
		},
		{
			name:     "Company test value",
			param:    solution.Parameter{ID: "a", ProvidedBy: solution.ProvidedByCompany, TestValue: "3.5"},
			expected: 3.5, ok: true, source: SourceTestValue,
		},
		{
			name:     "Range uses the same path",
			param:    solution.Parameter{ID: "r", ProvidedBy: solution.ProvidedByUser, DisplayType: solution.DisplayRange},
			inputs:   solution.Inputs{"r": "75 %"},
			expected: 75, ok: true, source: SourceInput,
		},
		{
			name:     "NaN is unresolved",
			param:    solution.Parameter{ID: "x", ProvidedBy: solution.ProvidedByUser},
			inputs:   solution.Inputs{"x": "abc"},
			ok:       false, source: SourceNone,
		},
		{
			name:     "Unknown display type treated as simple",
			param:    solution.Parameter{ID: "x", ProvidedBy: solution.ProvidedByUser, DisplayType: "slider"},
			inputs:   solution.Inputs{"x": "4"},
			expected: 4, ok: true, source: SourceInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.param, []solution.Parameter{tt.param}, tt.inputs)
			if r.OK != tt.ok || (tt.ok && math.Abs(r.Value-tt.expected) > 1e-12) {
				t.Errorf("Resolve() = %+v, expected %v (ok=%t)", r, tt.expected, tt.ok)
			}
			if r.Source != tt.source {
				t.Errorf("Resolve() source = %s, expected %s", r.Source, tt.source)
			}
		})
	}
}

func TestNonFiniteValuesAreUnresolved(t *testing.T) {
	user := solution.Parameter{ID: "x", Name: "x", ProvidedBy: solution.ProvidedByUser}
	company := solution.Parameter{ID: "a", Name: "a", ProvidedBy: solution.ProvidedByCompany, Value: "-Infinity"}
	price := electricityPrice(
		solution.DropdownOption{Key: "UK", Value: "1e999"},
		solution.DropdownOption{Key: "Huge", Value: "Infinity"},
	)
	price.ProvidedBy = solution.ProvidedByUser

	tests := []struct {
		name     string
		param    solution.Parameter
		siblings []solution.Parameter
		inputs   solution.Inputs
	}{
		{name: "user overflow", param: user, inputs: solution.Inputs{"x": "1e999"}},
		{name: "user infinity", param: user, inputs: solution.Inputs{"x": "Infinity"}},
		{name: "company static", param: company},
		{name: "country matched option", param: price, siblings: []solution.Parameter{countryFilter(), price}, inputs: solution.Inputs{"country": "UK"}},
		{name: "selected key", param: price, inputs: solution.Inputs{"price": "Huge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			siblings := tt.siblings
			if siblings == nil {
				siblings = []solution.Parameter{tt.param}
			}
			if v, ok := Value(tt.param, siblings, tt.inputs); ok {
				t.Errorf("Value() = %v, expected unresolved", v)
			}
		})
	}
}
