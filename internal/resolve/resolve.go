// Package resolve determines the runtime numeric value of a parameter from
// user input, authored static values, or a dropdown lookup steered by a
// country filter.
package resolve

import (
	"math"
	"strings"

	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/mathutil"
)

// Source names where a resolved value came from.
type Source string

// Resolution sources.
const (
	SourceNone      Source = "none"
	SourceFilter    Source = "filter"
	SourceOption    Source = "option"
	SourceInput     Source = "input"
	SourceStatic    Source = "static"
	SourceTestValue Source = "test_value"
)

// Resolution is the outcome of resolving one parameter.
type Resolution struct {
	Value  float64
	OK     bool
	Source Source
	// Strategy is set when Source is SourceFilter.
	Strategy string
}

// Value returns the numeric value of p, or false when it cannot be
// determined. siblings is the full parameter list of p's solution.
func Value(p solution.Parameter, siblings []solution.Parameter, inputs solution.Inputs) (float64, bool) {
	r := Resolve(p, siblings, inputs)
	return r.Value, r.OK
}

// Resolve is Value with provenance. It never panics; an unresolvable
// parameter yields OK == false.
func Resolve(p solution.Parameter, siblings []solution.Parameter, inputs solution.Inputs) Resolution {
	switch p.DisplayType {
	case solution.DisplayFilter:
		return Resolution{Source: SourceNone}
	case solution.DisplayDropdown:
		if r := byFilter(p, siblings, inputs); r.OK {
			return r
		}
		return bySelectedKey(p, inputs)
	case solution.DisplaySimple, solution.DisplayRange, "":
		return direct(p, inputs)
	default:
		return direct(p, inputs)
	}
}

// CountryFilter returns the filter parameter among siblings whose name
// mentions "country", if any.
func CountryFilter(siblings []solution.Parameter) (solution.Parameter, bool) {
	for _, s := range siblings {
		if s.IsFilter() && strings.Contains(strings.ToLower(s.Name), constants.FilterNameHint) {
			return s, true
		}
	}
	return solution.Parameter{}, false
}

func byFilter(p solution.Parameter, siblings []solution.Parameter, inputs solution.Inputs) Resolution {
	filter, ok := CountryFilter(siblings)
	if !ok || filter.ID == p.ID {
		return Resolution{Source: SourceNone}
	}
	selection, _ := raw(filter, inputs)
	if selection == "" {
		return Resolution{Source: SourceNone}
	}
	option, strategy, ok := MatchOption(p.DropdownOptions, selection)
	if !ok {
		return Resolution{Source: SourceNone}
	}
	v, ok := number(option.Value)
	if !ok {
		return Resolution{Source: SourceNone}
	}
	return Resolution{Value: v, OK: true, Source: SourceFilter, Strategy: strategy}
}

func bySelectedKey(p solution.Parameter, inputs solution.Inputs) Resolution {
	key, _ := raw(p, inputs)
	if key == "" {
		return Resolution{Source: SourceNone}
	}
	for _, option := range p.DropdownOptions {
		if strings.EqualFold(strings.TrimSpace(option.Key), key) {
			if v, ok := number(option.Value); ok {
				return Resolution{Value: v, OK: true, Source: SourceOption}
			}
			break
		}
	}
	return Resolution{Source: SourceNone}
}

func direct(p solution.Parameter, inputs solution.Inputs) Resolution {
	text, source := raw(p, inputs)
	if text == "" {
		return Resolution{Source: SourceNone}
	}
	v, ok := number(text)
	if !ok {
		return Resolution{Source: SourceNone}
	}
	return Resolution{Value: v, OK: true, Source: source}
}

// raw returns the text a parameter's value is read from: the user's entry
// for user parameters (falling back to the authored default), or the static
// value then test value for company parameters.
func raw(p solution.Parameter, inputs solution.Inputs) (string, Source) {
	if p.ProvidedBy == solution.ProvidedByUser {
		if v := inputs.Get(p.ID); v != "" {
			return v, SourceInput
		}
	}
	if v := strings.TrimSpace(p.Value.String()); v != "" {
		return v, SourceStatic
	}
	if p.ProvidedBy == solution.ProvidedByCompany {
		if v := strings.TrimSpace(p.TestValue.String()); v != "" {
			return v, SourceTestValue
		}
	}
	return "", SourceNone
}

// number parses text like parseFloat. Infinities count as unparseable since
// they cannot travel in a JSON payload.
func number(text string) (float64, bool) {
	v, ok := mathutil.ParseFloat(text)
	if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
