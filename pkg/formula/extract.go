package formula

import (
	"regexp"
	"strings"
)

// identifierRun matches an identifier start followed by one or more
// identifier characters or spaces, so multi-word names are captured whole.
var identifierRun = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_\s]+`)

// ExtractNames scans formula left to right and returns the candidate variable
// names it references, trimmed, in order of appearance. Duplicates are kept;
// callers dedupe through NameMap.Add.
//
// A single-character name such as "x" is not a match on its own.
func ExtractNames(formula string) []string {
	matches := identifierRun.FindAllString(formula, -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		if trimmed := strings.TrimSpace(match); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
