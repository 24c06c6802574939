// Package stats holds the small numeric helpers shared by the analytics
// components. Every helper returns 0 instead of dividing by zero.
package stats

import (
	"math"
	"strconv"
)

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round rounds x to the given number of decimal places. Rounding is done on
// the exact binary value with ties to even, so 0.125 -> 0.12 and 2.675 -> 2.67.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
