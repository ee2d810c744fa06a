package solution

import (
	"github.com/iwvelando/valuecalc/pkg/formula"
)

// MarkPending flags every targeted calculation as awaiting a result.
func (s *Solution) MarkPending(target []string) {
	want := toSet(target)
	for i := range s.Calculations {
		if _, ok := want[formula.Sanitize(s.Calculations[i].Name)]; ok {
			s.Calculations[i].Status = StatusPending
		}
	}
}

// ApplyResults copies service results onto the targeted calculations.
// A targeted calculation without a value is marked as an error; calculations
// that were not targeted keep their previous state. A nil results map means
// the invocation failed and every targeted calculation loses its value.
func (s *Solution) ApplyResults(target []string, results map[string]float64) {
	want := toSet(target)
	for i := range s.Calculations {
		c := &s.Calculations[i]
		token := formula.Sanitize(c.Name)
		if _, ok := want[token]; !ok {
			continue
		}
		if v, ok := results[token]; ok {
			value := v
			c.Result = &value
			c.Status = StatusValid
			continue
		}
		c.Result = nil
		c.Status = StatusError
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
