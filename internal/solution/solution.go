// Package solution defines the parameters, calculations and solutions that
// make up a value calculator, and the user inputs that drive them.
package solution

import (
	"strings"

	"github.com/iwvelando/valuecalc/pkg/constants"
)

// ProvidedBy says who supplies a parameter's value.
type ProvidedBy string

// Parameter provenance.
const (
	ProvidedByUser    ProvidedBy = constants.ProvidedByUser
	ProvidedByCompany ProvidedBy = constants.ProvidedByCompany
)

// Valid reports whether p is a known provenance.
func (p ProvidedBy) Valid() bool {
	return p == ProvidedByUser || p == ProvidedByCompany
}

// DisplayType selects how a parameter is presented and therefore how its
// runtime value is resolved.
type DisplayType string

// Display types. An empty DisplayType behaves like DisplaySimple.
const (
	DisplaySimple   DisplayType = constants.DisplaySimple
	DisplayDropdown DisplayType = constants.DisplayDropdown
	DisplayFilter   DisplayType = constants.DisplayFilter
	DisplayRange    DisplayType = constants.DisplayRange
)

// Valid reports whether d is a known display type or empty.
func (d DisplayType) Valid() bool {
	switch d {
	case "", DisplaySimple, DisplayDropdown, DisplayFilter, DisplayRange:
		return true
	}
	return false
}

// Status is the evaluation state of a calculation.
type Status string

// Calculation states.
const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusError   Status = "error"
)

// Lifecycle is the authoring state of a solution.
type Lifecycle string

// Solution lifecycle states.
const (
	LifecycleDraft     Lifecycle = "draft"
	LifecycleSubmitted Lifecycle = "submitted"
)

// DropdownOption is one selectable entry of a dropdown parameter. Keys may
// carry extra text, e.g. "UK: 181" or "DE, AT, CH".
type DropdownOption struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Category groups calculations for display.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Parameter is one input to a solution's calculations.
type Parameter struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	ProvidedBy      ProvidedBy       `json:"provided_by" yaml:"provided_by"`
	DisplayType     DisplayType      `json:"display_type,omitempty" yaml:"display_type,omitempty"`
	Value           RawValue         `json:"value,omitempty" yaml:"value,omitempty"`
	TestValue       RawValue         `json:"test_value,omitempty" yaml:"test_value,omitempty"`
	DropdownOptions []DropdownOption `json:"dropdown_options,omitempty" yaml:"dropdown_options,omitempty"`
	Formula         string           `json:"formula,omitempty" yaml:"formula,omitempty"`
	Unit            string           `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	Category        string           `json:"category,omitempty" yaml:"category,omitempty"`
}

// IsFilter reports whether p only steers the resolution of other parameters.
func (p Parameter) IsFilter() bool {
	return p.DisplayType == DisplayFilter
}

// Calculation is a named quantity derived from a formula.
type Calculation struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Formula       string    `json:"formula" yaml:"formula"`
	Units         string    `json:"units,omitempty" yaml:"units,omitempty"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category      *Category `json:"category,omitempty" yaml:"category,omitempty"`
	Output        bool      `json:"output,omitempty" yaml:"output,omitempty"`
	DisplayResult bool      `json:"display_result,omitempty" yaml:"display_result,omitempty"`
	Level         *int      `json:"level,omitempty" yaml:"level,omitempty"`
	Result        *float64  `json:"result,omitempty" yaml:"result,omitempty"`
	Status        Status    `json:"status,omitempty" yaml:"status,omitempty"`
}

// Solution owns the ordered parameters and calculations sent to the
// calculation service.
type Solution struct {
	ID             string        `json:"id,omitempty" yaml:"id,omitempty"`
	ClientID       string        `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Name           string        `json:"name" yaml:"name"`
	IndustryID     string        `json:"industry_id,omitempty" yaml:"industry_id,omitempty"`
	TechnologyID   string        `json:"technology_id,omitempty" yaml:"technology_id,omitempty"`
	SolutionTypeID string        `json:"solution_type_id,omitempty" yaml:"solution_type_id,omitempty"`
	Variant        string        `json:"variant,omitempty" yaml:"variant,omitempty"`
	Status         Lifecycle     `json:"status,omitempty" yaml:"status,omitempty"`
	Categories     []Category    `json:"categories,omitempty" yaml:"categories,omitempty"`
	Parameters     []Parameter   `json:"parameters" yaml:"parameters"`
	Calculations   []Calculation `json:"calculations" yaml:"calculations"`
}

// Inputs holds the raw values a user entered, keyed by parameter ID. Values
// are numbers for simple parameters, option keys for dropdowns and the
// selection text for filters.
type Inputs map[string]string

// Get returns the trimmed input for a parameter ID.
func (in Inputs) Get(id string) string {
	if in == nil {
		return ""
	}
	return strings.TrimSpace(in[id])
}

// FindParameter returns the parameter with the given ID.
func (s *Solution) FindParameter(id string) (*Parameter, bool) {
	for i := range s.Parameters {
		if s.Parameters[i].ID == id {
			return &s.Parameters[i], true
		}
	}
	return nil, false
}

// FindCalculation returns the calculation with the given ID.
func (s *Solution) FindCalculation(id string) (*Calculation, bool) {
	for i := range s.Calculations {
		if s.Calculations[i].ID == id {
			return &s.Calculations[i], true
		}
	}
	return nil, false
}

// UpsertCalculation replaces the calculation with c's ID, or appends c when
// no such calculation exists.
func (s *Solution) UpsertCalculation(c Calculation) {
	if existing, ok := s.FindCalculation(c.ID); ok && c.ID != "" {
		*existing = c
		return
	}
	s.Calculations = append(s.Calculations, c)
}

// UpsertParameter replaces the parameter with p's ID, or appends p.
func (s *Solution) UpsertParameter(p Parameter) {
	if existing, ok := s.FindParameter(p.ID); ok && p.ID != "" {
		*existing = p
		return
	}
	s.Parameters = append(s.Parameters, p)
}

// RemoveParameter deletes the parameter with the given ID.
func (s *Solution) RemoveParameter(id string) bool {
	for i := range s.Parameters {
		if s.Parameters[i].ID == id {
			s.Parameters = append(s.Parameters[:i], s.Parameters[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveCalculation deletes the calculation with the given ID.
func (s *Solution) RemoveCalculation(id string) bool {
	for i := range s.Calculations {
		if s.Calculations[i].ID == id {
			s.Calculations = append(s.Calculations[:i], s.Calculations[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s Solution) Clone() Solution {
	out := s
	out.Categories = append([]Category(nil), s.Categories...)
	out.Parameters = make([]Parameter, len(s.Parameters))
	for i, p := range s.Parameters {
		p.DropdownOptions = append([]DropdownOption(nil), p.DropdownOptions...)
		out.Parameters[i] = p
	}
	out.Calculations = make([]Calculation, len(s.Calculations))
	for i, c := range s.Calculations {
		if c.Category != nil {
			cat := *c.Category
			c.Category = &cat
		}
		if c.Level != nil {
			lvl := *c.Level
			c.Level = &lvl
		}
		if c.Result != nil {
			r := *c.Result
			c.Result = &r
		}
		out.Calculations[i] = c
	}
	return out
}
