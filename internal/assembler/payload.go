// Package assembler builds the request payload sent to the calculation
// service from a solution and the user's inputs.
package assembler

import (
	"github.com/iwvelando/valuecalc/internal/solution"
)

// Payload is the body of a calculation request. It is built fresh for every
// invocation and never persisted.
type Payload struct {
	Inputs     map[string]float64 `json:"inputs"`
	Parameters []Entry            `json:"parameters"`
	Target     []string           `json:"target"`
}

// Entry declares one parameter or calculation to the service. Optional
// fields are only present when the source carries them.
type Entry struct {
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Value       *float64           `json:"value,omitempty"`
	Formula     string             `json:"formula,omitempty"`
	Unit        string             `json:"unit,omitempty"`
	Description string             `json:"description,omitempty"`
	Output      bool               `json:"output,omitempty"`
	Level       *int               `json:"level,omitempty"`
	Category    *solution.Category `json:"category,omitempty"`
}

// Entry looks up a declared entry by sanitized name.
func (p *Payload) Entry(name string) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	for _, e := range p.Parameters {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
