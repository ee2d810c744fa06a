package mathutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseFloat reads the longest numeric prefix of s, the way a browser's
// parseFloat does: "0.30" -> 0.30, " 181 kWh" -> 181, "1e3x" -> 1000,
// "-Infinity" -> -Inf. It reports false when no number can be read.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	unsigned := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(unsigned, "Infinity") && len(s)-len(unsigned) <= 1 {
		if strings.HasPrefix(s, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	match := leadingNumber.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// Only overflow gets here; ParseFloat already returns ±Inf for it.
		if math.IsInf(v, 0) {
			return v, true
		}
		return 0, false
	}
	return v, true
}
