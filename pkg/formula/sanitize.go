// Package formula turns human-readable parameter and calculation names into
// identifier tokens and rewrites formula text to use those tokens.
package formula

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// operatorChars are the arithmetic characters Sanitize leaves in place.
const operatorChars = "+-*/()"

// Sanitize converts a display name into a token usable as a formula variable.
// The steps run in a fixed order: trim, whitespace runs to "_", commas to "_",
// collapse repeated underscores, strip leading and trailing underscores.
//
// Sanitize is total and idempotent. It does not remove operator characters,
// so "Cost (USD)" becomes "Cost_(USD)"; see HasOperatorLeak.
func Sanitize(name string) string {
	s := strings.TrimSpace(name)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = strings.ReplaceAll(s, ",", "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// HasOperatorLeak reports whether a sanitized token still carries arithmetic
// operator characters and therefore cannot be used as a bare identifier.
func HasOperatorLeak(token string) bool {
	return strings.ContainsAny(token, operatorChars)
}
