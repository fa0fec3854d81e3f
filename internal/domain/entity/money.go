package entity

import "math"

// RoundAmount rounds a dollar amount to cents. Every box amount is passed
// through this at construction and aggregation so equality checks never
// see float drift past two decimal places.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// SameAmount compares two dollar amounts at cent precision
func SameAmount(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
