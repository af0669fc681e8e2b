package utils

import "math"

// SafeDiv divides a by b, returning 0 when the denominator is zero or the
// result is not finite. Every ratio in the assistant pipeline goes through
// here so NaN/Inf never leak into a payload.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SafeDivPtr is the variant for ratios where "unknown" is meaningful: it
// returns nil instead of 0 when the denominator is zero (days-cover with no
// recent sell-through, for example).
func SafeDivPtr(a, b float64) *float64 {
	if b == 0 {
		return nil
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Round2 rounds to two decimal places, the currency precision used across
// profit and price fields.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
