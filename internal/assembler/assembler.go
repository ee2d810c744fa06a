package assembler

import (
	"strings"

	"github.com/iwvelando/valuecalc/internal/resolve"
	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/formula"
	"go.uber.org/zap"
)

// Builder assembles payloads and logs what it resolved.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder returns a Builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Assemble builds the payload for sol. It returns nil when the solution has
// no parameters. The target is every calculation flagged display_result.
func Assemble(sol solution.Solution, inputs solution.Inputs) *Payload {
	return NewBuilder(nil).Assemble(sol, inputs)
}

// AssemblePreview builds the payload for evaluating a single calculation
// that is being added or edited. draft replaces the calculation with the
// same ID, or is appended, and is the only target.
func AssemblePreview(sol solution.Solution, inputs solution.Inputs, draft solution.Calculation) *Payload {
	return NewBuilder(nil).AssemblePreview(sol, inputs, draft)
}

// Assemble is the logging form of the package-level Assemble.
func (b *Builder) Assemble(sol solution.Solution, inputs solution.Inputs) *Payload {
	var target []string
	for _, c := range sol.Calculations {
		if c.DisplayResult {
			target = append(target, formula.Sanitize(c.Name))
		}
	}
	return b.build("assembler.Assemble", sol, inputs, target)
}

// AssemblePreview is the logging form of the package-level AssemblePreview.
func (b *Builder) AssemblePreview(sol solution.Solution, inputs solution.Inputs, draft solution.Calculation) *Payload {
	preview := sol.Clone()
	preview.UpsertCalculation(draft)
	return b.build("assembler.AssemblePreview", preview, inputs, []string{formula.Sanitize(draft.Name)})
}

// Names builds the name map for sol: every parameter and calculation name
// first, then any further names discovered in their formulas.
func Names(sol solution.Solution) *formula.NameMap {
	names := formula.NewNameMap()
	for _, p := range sol.Parameters {
		names.Add(p.Name)
	}
	for _, c := range sol.Calculations {
		names.Add(c.Name)
	}
	for _, p := range sol.Parameters {
		for _, ref := range formula.ExtractNames(p.Formula) {
			names.Add(ref)
		}
	}
	for _, c := range sol.Calculations {
		for _, ref := range formula.ExtractNames(c.Formula) {
			names.Add(ref)
		}
	}
	return names
}

func (b *Builder) build(op string, sol solution.Solution, inputs solution.Inputs, target []string) *Payload {
	if len(sol.Parameters) == 0 {
		b.logger.Debug("solution has no parameters, nothing to calculate",
			zap.String("op", op),
			zap.String("solution", sol.Name),
		)
		return nil
	}

	names := Names(sol)
	payload := &Payload{
		Inputs:     make(map[string]float64),
		Parameters: make([]Entry, 0, len(sol.Parameters)+len(sol.Calculations)),
		Target:     append([]string{}, target...),
	}

	for _, p := range sol.Parameters {
		if p.IsFilter() {
			continue
		}
		token := tokenFor(names, p.Name)
		entry := Entry{Name: token, Type: constants.PayloadTypeCompany}
		if p.ProvidedBy == solution.ProvidedByUser {
			entry.Type = constants.PayloadTypeUser
		}
		if strings.TrimSpace(p.Formula) != "" {
			entry.Formula = formula.Rewrite(p.Formula, names)
		}

		r := resolve.Resolve(p, sol.Parameters, inputs)
		if r.OK {
			value := r.Value
			entry.Value = &value
			payload.Inputs[token] = value
		} else {
			b.logger.Debug("parameter has no value",
				zap.String("op", op),
				zap.String("parameter", p.Name),
				zap.String("displayType", string(p.DisplayType)),
			)
		}
		payload.Parameters = append(payload.Parameters, entry)
	}

	for _, c := range sol.Calculations {
		if strings.TrimSpace(c.Formula) == "" {
			continue
		}
		entry := Entry{
			Name:        tokenFor(names, c.Name),
			Type:        constants.PayloadTypeCalculation,
			Formula:     formula.Rewrite(c.Formula, names),
			Unit:        c.Units,
			Description: c.Description,
			Output:      c.Output,
		}
		if c.Level != nil {
			level := *c.Level
			entry.Level = &level
		}
		if c.Category != nil {
			category := *c.Category
			entry.Category = &category
		}
		payload.Parameters = append(payload.Parameters, entry)
	}

	b.logger.Debug("assembled calculation request",
		zap.String("op", op),
		zap.String("solution", sol.Name),
		zap.Int("inputs", len(payload.Inputs)),
		zap.Int("entries", len(payload.Parameters)),
		zap.Strings("target", payload.Target),
	)

	return payload
}

func tokenFor(names *formula.NameMap, original string) string {
	if token, ok := names.Get(original); ok {
		return token
	}
	return formula.Sanitize(original)
}
