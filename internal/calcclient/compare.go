package calcclient

import (
	"context"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/internal/solution"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Variant is one solution configuration taking part in a comparison.
type Variant struct {
	Name     string
	Solution solution.Solution
	Inputs   solution.Inputs
}

// VariantResult is the outcome for one variant. Results is nil when the
// variant could not be calculated, and Err says why.
type VariantResult struct {
	Name    string
	Payload *assembler.Payload
	Results Results
	Err     error
}

// Compare assembles and calculates every variant concurrently with c and
// returns the outcomes in input order. Every variant's request is in flight
// at the same time. A failing variant does not affect the others.
func Compare(ctx context.Context, c *Client, variants []Variant) []VariantResult {
	out := make([]VariantResult, len(variants))
	builder := assembler.NewBuilder(c.logger)

	var g errgroup.Group
	for i, v := range variants {
		g.Go(func() error {
			payload := builder.Assemble(v.Solution, v.Inputs)
			results, err := c.Calculate(ctx, payload)
			if err != nil {
				c.logger.Warn("variant calculation failed",
					zap.String("op", "calcclient.Compare"),
					zap.String("variant", v.Name),
					zap.Error(err),
				)
			}
			out[i] = VariantResult{Name: v.Name, Payload: payload, Results: results, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
