package resolve

import (
	"strings"

	"github.com/iwvelando/valuecalc/internal/solution"
)

type matcher struct {
	name  string
	match func(key, selection string) bool
}

// matchers run in priority order; every option is tried against one
// matcher before the next matcher is considered.
var matchers = []matcher{
	{"exact", exactMatch},
	{"colon-prefix", colonPrefixMatch},
	{"list", listMatch},
	{"contains", containsMatch},
}

// MatchOption finds the option whose key corresponds to a filter selection
// and reports which strategy matched.
func MatchOption(options []solution.DropdownOption, selection string) (solution.DropdownOption, string, bool) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return solution.DropdownOption{}, "", false
	}
	for _, m := range matchers {
		for _, option := range options {
			key := strings.TrimSpace(option.Key)
			if key == "" {
				continue
			}
			if m.match(key, selection) {
				return option, m.name, true
			}
		}
	}
	return solution.DropdownOption{}, "", false
}

func exactMatch(key, selection string) bool {
	return strings.EqualFold(key, selection)
}

// colonPrefixMatch handles keys like "UK: 181".
func colonPrefixMatch(key, selection string) bool {
	prefix, _, found := strings.Cut(key, ":")
	return found && strings.EqualFold(strings.TrimSpace(prefix), selection)
}

// listMatch handles keys like "DE, AT, CH".
func listMatch(key, selection string) bool {
	if !strings.Contains(key, ",") {
		return false
	}
	for _, part := range strings.Split(key, ",") {
		if strings.EqualFold(strings.TrimSpace(part), selection) {
			return true
		}
	}
	return false
}

func containsMatch(key, selection string) bool {
	k := strings.ToLower(key)
	s := strings.ToLower(selection)
	return strings.Contains(k, s) || strings.Contains(s, k)
}
