// Package engine is a local stand-in for the remote calculation service.
// It evaluates an assembled payload's formulas and answers in the same
// positional format the service uses.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/iwvelando/valuecalc/internal/assembler"
	"go.uber.org/zap"
)

// Engine evaluates payloads.
type Engine struct {
	logger *zap.Logger
}

// New returns an Engine. A nil logger disables logging.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Evaluation is the outcome of one payload.
type Evaluation struct {
	// Values holds every name that could be computed.
	Values map[string]float64
	// Unresolved maps entries that never evaluated to the last error seen.
	Unresolved map[string]string
}

// Evaluate computes every formula in p. Entries may reference each other in
// any order; evaluation repeats until a pass makes no progress, so cycles
// and references to unknown names end up in Unresolved.
func (e *Engine) Evaluate(p *assembler.Payload) (Evaluation, error) {
	if p == nil {
		return Evaluation{}, fmt.Errorf("engine: nil payload")
	}

	env := make(map[string]interface{}, len(p.Inputs)+len(p.Parameters))
	for name, v := range p.Inputs {
		env[name] = v
	}

	pending := make(map[string]string)
	for _, entry := range p.Parameters {
		if entry.Formula == "" {
			if _, ok := env[entry.Name]; !ok && entry.Value != nil {
				env[entry.Name] = *entry.Value
			}
			continue
		}
		pending[entry.Name] = entry.Formula
	}

	lastErr := make(map[string]string)
	for len(pending) > 0 {
		progressed := false
		for _, name := range sortedKeys(pending) {
			v, err := evaluate(pending[name], env)
			if err != nil {
				lastErr[name] = err.Error()
				continue
			}
			env[name] = v
			delete(pending, name)
			delete(lastErr, name)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	values := make(map[string]float64, len(env))
	for name, v := range env {
		if f, ok := v.(float64); ok {
			values[name] = f
		}
	}

	if len(lastErr) > 0 {
		e.logger.Debug("unresolved formulas",
			zap.String("op", "engine.Evaluate"),
			zap.Any("unresolved", lastErr),
		)
	}
	return Evaluation{Values: values, Unresolved: lastErr}, nil
}

// Result returns the values for p's targets in target order. Targets that
// could not be computed, or are not finite, are nil.
func (e *Engine) Result(p *assembler.Payload) ([]interface{}, error) {
	ev, err := e.Evaluate(p)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(p.Target))
	for i, name := range p.Target {
		if v, ok := ev.Values[name]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out, nil
}

func evaluate(formula string, env map[string]interface{}) (float64, error) {
	program, err := expr.Compile(formula, expr.Env(env))
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("formula %q evaluated to %T", formula, out)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
