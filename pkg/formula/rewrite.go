package formula

import (
	"regexp"
	"sort"
)

// Rewrite replaces every whole-word occurrence of a registered original name
// in formula with its sanitized token.
//
// Names are substituted longest first. This ordering is required for
// correctness: with "Opex Cost" and "Opex Cost Total" both registered, doing
// the shorter one first would turn "Opex Cost Total" into "Opex_Cost Total"
// and the longer name would never match.
func Rewrite(formula string, names *NameMap) string {
	if formula == "" || names == nil || names.Len() == 0 {
		return formula
	}
	return substitute(formula, longestFirst(names.Originals()), names)
}

// longestFirst sorts names by descending length, keeping insertion order
// among names of equal length.
func longestFirst(originals []string) []string {
	sorted := append([]string(nil), originals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}

// substitute applies the replacements in exactly the given order.
func substitute(formula string, order []string, names *NameMap) string {
	for _, original := range order {
		sanitized, ok := names.Get(original)
		if !ok || sanitized == original {
			continue
		}
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(original) + `\b`)
		if err != nil {
			continue
		}
		formula = pattern.ReplaceAllLiteralString(formula, sanitized)
	}
	return formula
}
