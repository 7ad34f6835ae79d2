package kbperm

import "math"

// Goal selects whether a metric or search favours larger or smaller scores.
type Goal int

const (
	Max Goal = iota
	Min
)

func (g Goal) String() string {
	if g == Min {
		return "min"
	}
	return "max"
}

// Better reports whether a is strictly more favourable than b under g.
func (g Goal) Better(a, b float64) bool {
	if g == Max {
		return a > b
	}
	return a < b
}

// BetterOrEqual reports whether a is at least as favourable as b under g.
func (g Goal) BetterOrEqual(a, b float64) bool {
	if g == Max {
		return a >= b
	}
	return a <= b
}

// Extremum returns the goal-defined boundary of "no admission": 0 for
// Max (accept all non-negative scores), +Inf for Min (accept all).
func (g Goal) Extremum() float64 {
	if g == Max {
		return 0
	}
	return math.Inf(1)
}
