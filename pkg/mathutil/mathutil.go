// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
)

// Round rounds a value to the given number of decimals.
func Round(val float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(val*p) / p
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PercentDifference returns how far b is from a, relative to a, in percent.
// A zero baseline yields zero.
func PercentDifference(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / math.Abs(a) * 100
}
