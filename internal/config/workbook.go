package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/solution"
	"gopkg.in/yaml.v3"
)

// Workbook is a solution file: the solution, the inputs to run it with and
// optionally alternative variants to compare against it.
type Workbook struct {
	Solution solution.Solution `yaml:"solution" json:"solution"`
	Inputs   solution.Inputs   `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Variants []WorkbookVariant `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// WorkbookVariant is one named alternative inside a workbook.
type WorkbookVariant struct {
	Name     string            `yaml:"name" json:"name"`
	Solution solution.Solution `yaml:"solution" json:"solution"`
	Inputs   solution.Inputs   `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// LoadWorkbook reads a YAML (or JSON) workbook from path.
func LoadWorkbook(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading workbook, %w", err)
	}
	return ParseWorkbook(data)
}

// ParseWorkbook decodes a workbook. Variants without a name are named after
// their solution, then by position.
func ParseWorkbook(data []byte) (*Workbook, error) {
	var wb Workbook
	if err := yaml.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("unable to decode workbook, %w", err)
	}
	for i := range wb.Variants {
		v := &wb.Variants[i]
		if strings.TrimSpace(v.Name) != "" {
			continue
		}
		if v.Solution.Name != "" {
			v.Name = v.Solution.Name
		} else {
			v.Name = fmt.Sprintf("variant %d", i+1)
		}
	}
	return &wb, nil
}

// SetInputs applies "id=value" assignments on top of the workbook inputs
// and on top of the inputs of every variant that declares its own.
func (wb *Workbook) SetInputs(assignments []string) error {
	if len(assignments) == 0 {
		return nil
	}
	if wb.Inputs == nil {
		wb.Inputs = solution.Inputs{}
	}
	for _, a := range assignments {
		id, value, ok := strings.Cut(a, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return fmt.Errorf("invalid input %q, expected id=value", a)
		}
		wb.Inputs[id] = value
		for i := range wb.Variants {
			if wb.Variants[i].Inputs != nil {
				wb.Variants[i].Inputs[id] = value
			}
		}
	}
	return nil
}

// CompareSet returns the workbook's solution followed by its variants, ready
// for calcclient.Compare. A variant's own inputs are layered over the
// workbook inputs.
func (wb *Workbook) CompareSet() []calcclient.Variant {
	name := wb.Solution.Name
	if strings.TrimSpace(name) == "" {
		name = "base"
	}
	set := make([]calcclient.Variant, 0, len(wb.Variants)+1)
	set = append(set, calcclient.Variant{Name: name, Solution: wb.Solution, Inputs: wb.Inputs})
	for _, v := range wb.Variants {
		inputs := make(solution.Inputs, len(wb.Inputs)+len(v.Inputs))
		for id, value := range wb.Inputs {
			inputs[id] = value
		}
		for id, value := range v.Inputs {
			inputs[id] = value
		}
		set = append(set, calcclient.Variant{Name: v.Name, Solution: v.Solution, Inputs: inputs})
	}
	return set
}
