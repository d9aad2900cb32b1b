/*
DESCRIPTION
  align.go implements the default alignment oracle: the adapter that
  keeps phase-lock across successive reference-cycle regenerations by
  resampling each new cycle onto a fixed normalised phase axis and
  cross-correlating it against an accumulated running reference on that
  axis.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package align provides the default sink.AlignmentOracle
// implementation. SPEC_FULL.md §6 leaves the oracle's internal
// algorithm unpinned ("any mapping stable across reference
// regenerations suffices"); this implementation resamples every
// accepted reference cycle onto a fixed-length axis and finds the
// circular shift against the running average on that axis, which is
// the simplest mapping that is provably stable: a cycle identical to
// the previous one (up to the expected phase drift) always reports
// shift zero.
package align

import (
	"fmt"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/sad"
)

// Oracle is the default sink.AlignmentOracle. A zero Oracle is not
// ready to use; construct one with New.
type Oracle struct {
	axisLen int
	kernel  *sad.Kernel

	global []frame.Pixels // running-average cycle, resampled to axisLen samples
	target int            // current target index on the normalised axis

	sequenceHistory [][]frame.Pixels // bounded history of resampled cycles, most recent last
	shiftHistory    []int
	driftHistory    []int
	maxHistory      int
}

// New returns an Oracle whose normalised phase axis has axisLen
// samples (SPEC_FULL.md's AlignmentAxisLength, spec.md Design Notes §9
// item 4's "hard-coded 80" made configurable).
func New(axisLen int) *Oracle {
	if axisLen <= 0 {
		axisLen = 80
	}
	return &Oracle{axisLen: axisLen, kernel: sad.NewKernel(), maxHistory: 32}
}

// Update implements sink.AlignmentOracle. The first call establishes
// the running reference at target 0 (the phase-zero sample on the
// axis, matching the gater's own phase-zero default target). Every
// subsequent call resamples cycle onto the axis, finds the circular
// shift that best aligns it with the running reference, advances
// target by that shift, and folds the newly-aligned cycle into the
// running reference.
func (o *Oracle) Update(cycle *frame.Cycle, period float64, drift int) (int, error) {
	resampled, err := resample(cycle, o.axisLen)
	if err != nil {
		return 0, err
	}

	if o.global == nil {
		o.global = resampled
		o.target = 0
		o.record(resampled, 0, drift)
		return o.target, nil
	}

	shift := o.bestShift(resampled)
	o.target = mod(o.target+shift, o.axisLen)
	o.global = blend(o.global, rotate(resampled, -shift), 0.5)
	o.record(resampled, shift, drift)
	return o.target, nil
}

// record appends to the bounded sequence/shift/drift histories, used
// only for diagnostics (an observer may read them via History).
func (o *Oracle) record(resampled []frame.Pixels, shift, drift int) {
	o.sequenceHistory = append(o.sequenceHistory, resampled)
	o.shiftHistory = append(o.shiftHistory, shift)
	o.driftHistory = append(o.driftHistory, drift)
	if len(o.sequenceHistory) > o.maxHistory {
		o.sequenceHistory = o.sequenceHistory[1:]
		o.shiftHistory = o.shiftHistory[1:]
		o.driftHistory = o.driftHistory[1:]
	}
}

// History returns copies of the shift and drift histories recorded so
// far, oldest first, for observability purposes only.
func (o *Oracle) History() (shifts, drifts []int) {
	shifts = append([]int(nil), o.shiftHistory...)
	drifts = append([]int(nil), o.driftHistory...)
	return shifts, drifts
}

// bestShift finds the circular shift s in [-axisLen/2, axisLen/2) that
// minimises the total SAD between resampled shifted by s and o.global.
func (o *Oracle) bestShift(resampled []frame.Pixels) int {
	n := o.axisLen
	best := 0
	bestScore := o.axisShiftScore(resampled, 0)
	for s := -n / 2; s < n/2; s++ {
		if s == 0 {
			continue
		}
		score := o.axisShiftScore(resampled, s)
		if score < bestScore {
			bestScore = score
			best = s
		}
	}
	return best
}

func (o *Oracle) axisShiftScore(resampled []frame.Pixels, shift int) uint64 {
	var total uint64
	n := o.axisLen
	for i := 0; i < n; i++ {
		g := o.global[i]
		r := resampled[mod(i+shift, n)]
		s, _ := o.kernel.Vector(r, []frame.Pixels{g}, 0)
		total += s[0]
	}
	return total
}

// resample maps cycle's non-padded interior frames onto axisLen evenly
// spaced samples via nearest-neighbour selection.
func resample(cycle *frame.Cycle, axisLen int) ([]frame.Pixels, error) {
	n := cycle.N()
	e := cycle.Extra
	lo, hi := e, n-e-1
	if hi < lo {
		return nil, fmt.Errorf("align: reference cycle too short to resample onto %d samples", axisLen)
	}
	span := hi - lo
	out := make([]frame.Pixels, axisLen)
	for i := 0; i < axisLen; i++ {
		frac := float64(i) / float64(axisLen)
		idx := lo + int(frac*float64(span)+0.5)
		if idx > hi {
			idx = hi
		}
		out[i] = cycle.Frames[idx]
	}
	return out, nil
}

// rotate returns a copy of frames circularly shifted by delta (a
// shift of +1 moves index 0's content to index 1).
func rotate(frames []frame.Pixels, delta int) []frame.Pixels {
	n := len(frames)
	out := make([]frame.Pixels, n)
	for i := range frames {
		out[mod(i+delta, n)] = frames[i]
	}
	return out
}

// blend averages two equal-length, equal-shaped frame sequences
// pixel-wise with weight w on b (used to fold a new cycle into the
// running reference with a fixed learning rate).
func blend(a, b []frame.Pixels, w float64) []frame.Pixels {
	out := make([]frame.Pixels, len(a))
	for i := range a {
		pa, pb := a[i], b[i]
		data := make([]uint16, len(pa.Data))
		for j := range data {
			data[j] = uint16((1-w)*float64(pa.Data[j]) + w*float64(pb.Data[j]))
		}
		out[i] = frame.Pixels{H: pa.H, W: pa.W, Data: data, SourceDepth: pa.SourceDepth}
	}
	return out
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
