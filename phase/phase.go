/*
DESCRIPTION
  phase.go implements the phase matcher: given a frame and a reference
  cycle, find the sub-frame position within the cycle that best matches
  the frame, together with the full SAD vector (consumed by the gater
  for its argmin-SAD bookkeeping).

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package phase matches an incoming frame against a reference cycle,
// yielding a fractional phase position in reference-frame units.
package phase

import (
	"fmt"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/sad"
	"github.com/cardiogate/gogater/vfit"
)

// DriftShifts is the +/- horizontal pixel shift range searched by the
// SAD kernel when matching against the reference cycle (D in
// SPEC_FULL.md §4.1).
const DriftShifts = 3

// Match computes the SAD of f against every frame in cycle, restricts
// the search for the best match to the non-padded interior
// [E, N_ref-E-1], and refines the best index to sub-frame resolution
// via a three-point V-fit. It returns the fractional phase position (in
// reference-frame units), the full SAD vector, and the drift estimate
// (horizontal pixel shift) at the matched index.
func Match(k *sad.Kernel, f frame.Pixels, cycle *frame.Cycle) (phaseInFrames float64, sads []uint64, drift int, err error) {
	n := cycle.N()
	e := cycle.Extra
	if n-2*e-1 < 1 {
		return 0, nil, 0, fmt.Errorf("phase: reference cycle of %d frames too short for %d padding frames each side", n, e)
	}

	sads, drifts := k.Vector(f, cycle.Frames, DriftShifts)

	lo, hi := e, n-e-1
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if sads[i] < sads[best] {
			best = i
		}
	}

	v := 0.0
	if best-1 >= 0 && best+1 < n {
		v = vfit.Offset(float64(sads[best-1]), float64(sads[best]), float64(sads[best+1]))
	}

	return float64(best) + v, sads, drifts[best], nil
}
