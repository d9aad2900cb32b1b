/*
DESCRIPTION
  sad.go implements the sum-of-absolute-differences kernel used by both
  the period finder and the phase matcher: comparing one frame against
  a set of reference frames, optionally searching a small range of
  horizontal pixel shifts to compensate for specimen drift.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package sad computes sum-of-absolute-differences vectors between a
// frame and a set of reference frames. It is the one component on the
// per-frame hot path, so Kernel retains its scratch buffers across
// calls rather than allocating them each time (the same shape as
// filter.Diff's retained prev Mat in the teacher repo, generalised from
// one previous frame to an arbitrary reference set).
package sad

import (
	"fmt"

	"github.com/cardiogate/gogater/frame"
)

// Kernel computes SAD vectors against a shifting pixel plane, reusing
// its internal scratch buffers across calls. A Kernel is not safe for
// concurrent use; the gating core is single-threaded by design (see
// SPEC_FULL.md §5), so this is never a concern in practice.
type Kernel struct {
	sadBuf   []uint64 // reusable result buffer, grown as needed
	driftBuf []int    // reusable result buffer, grown as needed
}

// NewKernel returns a ready-to-use Kernel.
func NewKernel() *Kernel { return &Kernel{} }

// Vector computes sad[i] = sum_{y,x} |f[y,x] - refs[i][y,x]|, minimised
// over horizontal shifts delta in [-shifts, +shifts] when shifts > 0.
// drift[i] records the argmin shift for refs[i] (always 0 when
// shifts == 0). Vector panics if any refs[i] does not share f's shape;
// this is a fatal programming error per SPEC_FULL.md §4.1, never a
// condition the core is expected to recover from.
//
// The returned slices alias Kernel's internal scratch buffers and are
// only valid until the next call to Vector.
func (k *Kernel) Vector(f frame.Pixels, refs []frame.Pixels, shifts int) (sad []uint64, drift []int) {
	if cap(k.sadBuf) < len(refs) {
		k.sadBuf = make([]uint64, len(refs))
		k.driftBuf = make([]int, len(refs))
	}
	sad = k.sadBuf[:len(refs)]
	drift = k.driftBuf[:len(refs)]
	for i, r := range refs {
		if !f.SameShape(r) {
			panic(fmt.Sprintf("sad: shape mismatch: frame %dx%d vs reference %dx%d", f.H, f.W, r.H, r.W))
		}
		best := uint64(0)
		bestDelta := 0
		for n, delta := 0, -shifts; delta <= shifts; delta, n = delta+1, n+1 {
			s := k.shiftedSAD(f, r, delta)
			if n == 0 || s < best {
				best = s
				bestDelta = delta
			}
		}
		sad[i] = best
		drift[i] = bestDelta
	}
	return sad, drift
}

// shiftedSAD sums |f[y,x] - r[y,x-delta]| over every column, treating
// the area outside r's bounds under the shift as zero-intensity
// background: a column shifted out of frame is charged the full
// |f[y,x] - 0|, not skipped. Skipping would make large, meaningless
// shifts artificially cheap whenever the true match is imperfect (most
// visibly for narrow frames, where a shift can push every column out
// of bounds and score a free zero); charging against background keeps
// delta=0 favoured unless a genuine shifted match is better everywhere
// it has data.
func (k *Kernel) shiftedSAD(f, r frame.Pixels, delta int) uint64 {
	var total uint64
	for y := 0; y < f.H; y++ {
		fRow := f.Data[y*f.W : y*f.W+f.W]
		rRow := r.Data[y*r.W : y*r.W+r.W]
		for x := 0; x < f.W; x++ {
			rx := x - delta
			var b uint16
			if rx >= 0 && rx < r.W {
				b = rRow[rx]
			}
			a := fRow[x]
			if a >= b {
				total += uint64(a - b)
			} else {
				total += uint64(b - a)
			}
		}
	}
	return total
}
