package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/valuecalc/pkg/formula"
)

// NamedItem is anything that contributes a name to a formula namespace.
type NamedItem struct {
	Kind string // "Parameter" or "Calculation"
	Name string
}

// ValidateToken returns a warning when name does not sanitize to a usable
// bare identifier, or "" when it does.
func ValidateToken(item NamedItem) string {
	token := formula.Sanitize(item.Name)
	if token == "" {
		return fmt.Sprintf("%s '%s' sanitizes to an empty token", item.Kind, item.Name)
	}
	if formula.HasOperatorLeak(token) {
		return fmt.Sprintf("%s '%s' sanitizes to '%s', which contains operator characters and may not evaluate",
			item.Kind, item.Name, token)
	}
	return ""
}

// ValidateTokenCollisions warns about distinct names that sanitize to the
// same token, since the calculation service cannot tell them apart.
func ValidateTokenCollisions(items []NamedItem) []string {
	byToken := make(map[string][]string)
	var tokens []string
	for _, item := range items {
		token := formula.Sanitize(item.Name)
		if token == "" {
			continue
		}
		if _, seen := byToken[token]; !seen {
			tokens = append(tokens, token)
		}
		if !contains(byToken[token], item.Name) {
			byToken[token] = append(byToken[token], item.Name)
		}
	}

	var warnings []string
	for _, token := range tokens {
		names := byToken[token]
		if len(names) < 2 {
			continue
		}
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = "'" + n + "'"
		}
		warnings = append(warnings, fmt.Sprintf("Names %s all sanitize to '%s'", strings.Join(quoted, ", "), token))
	}
	return warnings
}

// ValidateReferences warns about names used in a formula that are not
// declared. declared holds sanitized tokens.
func ValidateReferences(owner NamedItem, expression string, declared map[string]struct{}) []string {
	var warnings []string
	seen := make(map[string]struct{})
	for _, ref := range formula.ExtractNames(expression) {
		token := formula.Sanitize(ref)
		if _, ok := declared[token]; ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		warnings = append(warnings, fmt.Sprintf("%s '%s' references undeclared name '%s'", owner.Kind, owner.Name, ref))
	}
	sort.Strings(warnings)
	return warnings
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
