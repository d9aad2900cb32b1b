/*
DESCRIPTION
  trigger.go implements the trigger predictor: a linear extrapolation
  of cumulative phase against time, used to predict when the specimen
  will next cross the target phase, and the decide-to-fire arbitration
  that turns a prediction into a trigger (or a recorded miss).

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package trigger predicts future target-phase crossings from a
// frame-history's cumulative phase trace, and arbitrates whether to
// fire a trigger for each new frame.
package trigger

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/gaterr"
)

// ErrNoPrediction is returned when the fit window is too small or the
// regression is not phase-advancing.
var ErrNoPrediction = gaterr.ErrNoPrediction

// Predictor extrapolates phase-vs-time and arbitrates trigger firing.
// It tracks the last target-phase integer cycle for which a trigger
// was fired, so that at most one trigger is
// emitted per crossing (spec.md §8 invariant 3). A zero Predictor is
// ready to use.
type Predictor struct {
	haveLastCycle  bool
	lastFiredCycle int64
}

// Reset clears the fired-cycle suppression state, used by the gater
// when a new reference cycle takes over (a cycle boundary on the new
// reference is not comparable to the old one).
func (p *Predictor) Reset() {
	p.haveLastCycle = false
	p.lastFiredCycle = 0
}

// Predict performs the windowed linear-regression extrapolation
// described in SPEC_FULL.md §4.4 steps 1-4, returning the predicted
// absolute crossing time.
func Predict(hist []frame.HistoryEntry, cfg config.Config) (float64, error) {
	n := len(hist)
	if n == 0 {
		return 0, ErrNoPrediction
	}
	latest := hist[n-1]

	p := cfg.ReferencePeriod
	nRef := cfg.NRef()
	barrierOffset := mod(latest.SADMinIndex-cfg.BarrierFrame, nRef)
	barrierPhase := latest.UnwrappedPhase - 2*math.Pi*float64(barrierOffset)/p

	start := 0
	for i := n - 1; i >= 0; i-- {
		if hist[i].UnwrappedPhase < barrierPhase {
			start = i + 1
			break
		}
		start = i
	}
	window := hist[start:]
	if len(window) > cfg.MaxFramesForFit {
		window = window[len(window)-cfg.MaxFramesForFit:]
	}
	if len(window) < cfg.MinFramesForFit {
		return 0, ErrNoPrediction
	}

	ts := make([]float64, len(window))
	phis := make([]float64, len(window))
	for i, e := range window {
		ts[i] = e.Timestamp
		phis[i] = e.UnwrappedPhase
	}

	alpha, beta := stat.LinearRegression(ts, phis, nil, false)
	if beta <= 0 {
		return 0, ErrNoPrediction
	}

	target := cfg.TargetSyncPhase()
	phiTarget := target + 2*math.Pi*math.Ceil((latest.UnwrappedPhase-target)/(2*math.Pi))

	tHat := (phiTarget - alpha) / beta

	maxAhead := cfg.ExtrapolationFactor * p / cfg.FrameRate
	if tHat-latest.Timestamp > maxAhead {
		return 0, ErrNoPrediction
	}

	return tHat, nil
}

// Decision is the outcome of Decide: fire now, record a miss, or wait.
type Decision struct {
	Fire    bool
	Missed  bool
	Wait    float64 // Seconds to wait before the trigger sink should fire, when Fire is true.
	Suppress bool   // True when this crossing already produced a fire decision.
}

// Decide applies the decide-to-fire arbitration of SPEC_FULL.md §4.4 to
// a prediction tHat for the frame at timestamp now with cumulative
// phase currentPhase, suppressing repeat decisions within the same
// target-phase crossing.
func (p *Predictor) Decide(tHat, now, currentPhase float64, cfg config.Config) Decision {
	target := cfg.TargetSyncPhase()
	cycle := int64(math.Floor((currentPhase - target) / (2 * math.Pi)))
	if p.haveLastCycle && cycle <= p.lastFiredCycle {
		return Decision{Suppress: true}
	}

	delta := tHat - now
	switch {
	case delta < cfg.PredictionLatency:
		// A miss does not suppress this crossing: a later frame in the
		// same cycle may re-fit with a delta back above the latency
		// floor and still fire.
		// Only an actual fire may suppress further decisions, per the
		// at-most-one-trigger-per-crossing invariant.
		return Decision{Missed: true}
	case delta <= 2*cfg.ReferencePeriod/cfg.FrameRate:
		p.haveLastCycle = true
		p.lastFiredCycle = cycle
		return Decision{Fire: true, Wait: delta}
	default:
		return Decision{}
	}
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
