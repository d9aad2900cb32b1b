/*
DESCRIPTION
  vfit.go implements the three-point symmetric V-fit used by both the
  period finder and the phase matcher to refine an integer-valued
  extremum to sub-frame resolution.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package vfit provides the sub-frame V-fit shared by period and phase,
// factored out as a leaf so neither of those packages needs to import
// the other.
package vfit

// Offset fits a symmetric V to the three points (yMinus, y0, yPlus),
// where y0 is presumed to be at or near the minimum, and returns the
// sub-sample offset v such that the true minimum lies at index+v.
//
// v is in [0, +0.5] when the left neighbour is farther from the
// minimum than the right, and in [-0.5, 0] otherwise. Division by zero
// (a perfectly flat or perfectly symmetric-and-equal triple) yields an
// offset of 0.
func Offset(yMinus, y0, yPlus float64) float64 {
	if yMinus >= yPlus {
		denom := yMinus - y0
		if denom == 0 {
			return 0
		}
		return 0.5 * (yMinus - yPlus) / denom
	}
	denom := yPlus - y0
	if denom == 0 {
		return 0
	}
	return 0.5 * (yMinus - yPlus) / denom
}
