/*
DESCRIPTION
  gater.go implements the gating state machine (C5): it drives modes
  RESET -> DETERMINE -> SYNC <-> ADAPT, owns the frame/period/reference
  buffers, invokes the period finder, phase matcher and trigger
  predictor, and emits triggers through the trigger sink.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package gater implements the prospective-optical-gating state
// machine described in SPEC_FULL.md §4.5. It is the only component
// that depends on all of sad, period, phase and trigger; nothing
// depends on it (resolving the cyclic-import pattern flagged in
// spec.md Design Notes §9).
package gater

import (
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/gaterr"
	"github.com/cardiogate/gogater/observe"
	"github.com/cardiogate/gogater/phase"
	"github.com/cardiogate/gogater/period"
	"github.com/cardiogate/gogater/sad"
	"github.com/cardiogate/gogater/sink"
	"github.com/cardiogate/gogater/store"
	"github.com/cardiogate/gogater/trigger"
)

// State is one of the four gater modes.
type State int

const (
	Reset State = iota
	Determine
	Sync
	Adapt
)

// String implements fmt.Stringer for logging.
func (s State) String() string {
	switch s {
	case Reset:
		return "RESET"
	case Determine:
		return "DETERMINE"
	case Sync:
		return "SYNC"
	case Adapt:
		return "ADAPT"
	default:
		return "UNKNOWN"
	}
}

// Gater drives a single gating session. It is not safe for concurrent
// use: SPEC_FULL.md §5 requires one frame to be fully processed before
// the next is accepted, and Gater enforces no locking of its own on
// that assumption.
type Gater struct {
	cfg   config.Config
	state State

	cycle         *frame.Cycle
	history       *frame.History
	periodHistory frame.PeriodHistory
	refBuffer     []frame.Pixels

	frameNum   int
	triggerNum int
	lastPhase  float64
	haveLast   bool

	lastTimestamp float64
	haveTimestamp bool
	stopped       bool

	needsUserSelection bool
	pendingCycle       *frame.Cycle
	pendingPeriod      float64
	pendingDrift       int

	driftSum   int64
	driftCount int

	kernel    *sad.Kernel
	predictor trigger.Predictor

	sink   sink.TriggerSink
	oracle sink.AlignmentOracle
	store  *store.Store
	obs    observe.Observer
	log    logging.Logger
}

// New returns a Gater ready to begin in RESET, using the given
// configuration and collaborators. obs and store may be nil.
func New(cfg config.Config, tsink sink.TriggerSink, oracle sink.AlignmentOracle, obs observe.Observer, st *store.Store) (*Gater, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gaterr.ErrBadConfig, err)
	}
	if tsink == nil {
		return nil, fmt.Errorf("%w: trigger sink must not be nil", gaterr.ErrBadConfig)
	}
	if oracle == nil {
		return nil, fmt.Errorf("%w: alignment oracle must not be nil", gaterr.ErrBadConfig)
	}
	if obs == nil {
		obs = observe.NoOp{}
	}
	g := &Gater{
		cfg:     cfg,
		state:   Reset,
		history: frame.NewHistory(cfg.FrameBufferLength),
		kernel:  sad.NewKernel(),
		sink:    tsink,
		oracle:  oracle,
		store:   st,
		obs:     obs,
		log:     cfg.Logger,
	}
	return g, nil
}

// State returns the gater's current mode.
func (g *Gater) State() State { return g.state }

// Config returns a copy of the gater's current configuration.
func (g *Gater) Config() config.Config { return g.cfg }

// TriggerCount returns the number of triggers fired since the last
// reference-cycle acceptance.
func (g *Gater) TriggerCount() int { return g.triggerNum }

// NeedsUserSelection reports whether the gater has a freshly-determined
// reference cycle awaiting SelectTargetFrame.
func (g *Gater) NeedsUserSelection() bool { return g.needsUserSelection }

// Stop raises the cooperative stop flag: the current frame (if any)
// finishes, but no further frame is accepted until Resume. The frame
// buffer and reference cycle are preserved.
func (g *Gater) Stop() { g.stopped = true }

// Resume clears the cooperative stop flag.
func (g *Gater) Resume() { g.stopped = false }

// Process runs one frame through the gater, dispatching by current
// state, and returns the frame with its metadata populated (including
// the Sync sub-record once any frame has been matched in SYNC mode).
// Ordering (strictly increasing timestamps) is enforced unconditionally;
// a violation is a fatal error per SPEC_FULL.md §7.
func (g *Gater) Process(f frame.Frame) (frame.Frame, error) {
	if g.stopped {
		return f, gaterr.ErrStopped
	}
	if g.haveTimestamp && f.Timestamp <= g.lastTimestamp {
		return f, fmt.Errorf("%w: %.6f <= %.6f", gaterr.ErrOutOfOrder, f.Timestamp, g.lastTimestamp)
	}
	g.lastTimestamp = f.Timestamp
	g.haveTimestamp = true

	var out frame.Frame
	var err error
	switch g.state {
	case Reset:
		g.doReset()
		out = f
	case Determine:
		out, err = g.doDetermine(f)
	case Adapt:
		out, err = g.doAdapt(f)
	case Sync:
		out, err = g.doSync(f)
	default:
		return f, fmt.Errorf("gater: unknown state %v", g.state)
	}
	g.obs.OnFrame(out)
	return out, err
}

// doReset clears buffers for a new period determination, per
// SPEC_FULL.md §4.5 RESET.
func (g *Gater) doReset() {
	g.history.Reset()
	g.refBuffer = nil
	g.frameNum = 0
	g.cycle = nil
	g.needsUserSelection = false
	g.pendingCycle = nil
	g.haveLast = false

	if g.cfg.UpdateAfterNTriggers > 0 && g.triggerNum >= g.cfg.UpdateAfterNTriggers {
		g.triggerNum = 0
		g.state = Adapt
		g.log.Debug("reset: routing to adapt", "trigger_num_threshold", g.cfg.UpdateAfterNTriggers)
		return
	}
	g.state = Determine
	g.log.Debug("reset: routing to determine")
}

// acquire appends f to the rolling reference buffer and attempts to
// establish a new reference cycle from it, shared by DETERMINE and
// ADAPT (SPEC_FULL.md §4.5 "identical acquisition logic").
func (g *Gater) acquire(f frame.Frame) (established bool, err error) {
	g.refBuffer = append(g.refBuffer, f.Pixels)
	g.frameNum++

	if len(g.refBuffer) < 2 {
		return false, nil
	}

	latest := g.refBuffer[len(g.refBuffer)-1]
	diffs, _ := g.kernel.Vector(latest, g.refBuffer, 0)

	p, ok := period.Find(diffs, g.cfg)
	if !ok {
		return false, nil
	}
	g.periodHistory.Append(p)

	e := g.cfg.NumExtraRefFrames
	stableLength := g.periodHistory.Len() >= 5+2*e
	periodToUse, haveRepresentative := g.periodHistory.FromEnd(e)
	if !stableLength || !haveRepresentative || periodToUse <= 6 {
		return false, nil
	}

	nRef := int(math.Ceil(periodToUse)) + 1 + 2*e
	if nRef > len(g.refBuffer) {
		return false, nil
	}
	tail := g.refBuffer[len(g.refBuffer)-nRef:]
	frames := make([]frame.Pixels, len(tail))
	copy(frames, tail)

	cycle, err := frame.NewCycle(frames, periodToUse, e)
	if err != nil {
		return false, nil
	}

	// Estimate drift for the new cycle from the SAD kernel's own
	// horizontal-shift search, for sessions with no preceding SYNC
	// generation to draw an accumulated drift estimate from (see
	// averageDrift).
	measuredDrift := 0
	if _, _, d, merr := phase.Match(g.kernel, latest, cycle); merr == nil {
		measuredDrift = d
	}

	g.pendingCycle = cycle
	g.pendingPeriod = periodToUse
	g.pendingDrift = measuredDrift
	return true, nil
}

// averageDrift returns the mean of the per-frame drift estimates
// measured by the phase matcher across the SYNC session just ended,
// rounded to the nearest integer pixel shift, for handing to the
// alignment oracle on the next ADAPT (SPEC_FULL.md §4.5/§6, glossary
// "Drift").
func (g *Gater) averageDrift() int {
	if g.driftCount == 0 {
		return 0
	}
	return int(math.Round(float64(g.driftSum) / float64(g.driftCount)))
}

// doDetermine implements SPEC_FULL.md §4.5 DETERMINE.
func (g *Gater) doDetermine(f frame.Frame) (frame.Frame, error) {
	established, err := g.acquire(f)
	if err != nil {
		return f, err
	}
	if !established {
		return f, nil
	}

	g.cycle = g.pendingCycle
	g.cfg = g.cfg.WithReferencePeriod(g.pendingPeriod)
	g.autoPickTargetAndBarrier()

	if g.store != nil {
		if err := g.store.Save(g.cycle); err != nil {
			g.log.Warning("could not persist reference cycle", "error", err.Error())
		}
	}
	g.obs.OnReferenceChange(g.cycle, g.cfg)

	g.needsUserSelection = true
	g.log.Info("reference period determined, awaiting target selection", "period", g.cfg.ReferencePeriod)
	return f, nil
}

// SelectTargetFrame is the UI hook of SPEC_FULL.md §6: the external
// caller either rejects the candidate cycle (idx < 0, returning the
// gater to RESET) or confirms a target reference-frame index, which
// seeds the alignment oracle and enters SYNC.
func (g *Gater) SelectTargetFrame(idx int) {
	if !g.needsUserSelection {
		return
	}
	g.needsUserSelection = false

	if idx < 0 {
		g.state = Reset
		return
	}

	g.cfg = g.cfg.WithReferenceFrame(float64(idx))
	g.autoPickBarrier()

	if _, err := g.oracle.Update(g.cycle, g.cfg.ReferencePeriod, g.pendingDrift); err != nil {
		g.log.Warning("alignment oracle seed failed", "error", err.Error())
	}

	g.enterSync()
}

// doAdapt implements SPEC_FULL.md §4.5 ADAPT.
func (g *Gater) doAdapt(f frame.Frame) (frame.Frame, error) {
	established, err := g.acquire(f)
	if err != nil {
		return f, err
	}
	if !established {
		return f, nil
	}

	g.cycle = g.pendingCycle
	g.cfg = g.cfg.WithReferencePeriod(g.pendingPeriod)

	target, err := g.oracle.Update(g.cycle, g.cfg.ReferencePeriod, g.averageDrift())
	if err != nil {
		return f, fmt.Errorf("gater: alignment oracle: %w", err)
	}
	axisLen := g.cfg.AlignmentAxisLength
	newRefFrame := math.Mod(g.cfg.ReferencePeriod*float64(target)/float64(axisLen), g.cfg.ReferencePeriod)
	g.cfg = g.cfg.WithReferenceFrame(newRefFrame)
	g.autoPickBarrier()

	if g.store != nil {
		if err := g.store.Save(g.cycle); err != nil {
			g.log.Warning("could not persist reference cycle", "error", err.Error())
		}
	}
	g.obs.OnReferenceChange(g.cycle, g.cfg)

	g.enterSync()
	g.log.Info("adapted reference cycle while preserving phase-lock", "period", g.cfg.ReferencePeriod, "target", target)
	return f, nil
}

// enterSync resets the per-cycle bookkeeping and transitions to SYNC.
func (g *Gater) enterSync() {
	g.frameNum = 0
	g.haveLast = false
	g.history.Reset()
	g.predictor.Reset()
	g.driftSum = 0
	g.driftCount = 0
	g.state = Sync
}

// autoPickTargetAndBarrier applies the default target-and-barrier
// auto-pick rule of SPEC_FULL.md §4.5, run when DETERMINE accepts a
// reference cycle (resolving spec.md Design Notes §9 item 3). ADAPT
// takes its target from the alignment oracle and re-runs only
// autoPickBarrier.
func (g *Gater) autoPickTargetAndBarrier() {
	g.cfg = g.cfg.WithReferenceFrame(float64(g.cfg.NumExtraRefFrames))
	g.autoPickBarrier()
}

// autoPickBarrier sets barrier_frame diametrically opposite the
// current target within the cycle.
func (g *Gater) autoPickBarrier() {
	nRef := g.cycle.N()
	target := int(math.Round(g.cfg.ReferenceFrame))
	barrier := (target + nRef/2) % nRef
	if barrier < 0 {
		barrier += nRef
	}
	g.cfg = g.cfg.WithBarrierFrame(barrier)
}

// doSync implements SPEC_FULL.md §4.5 SYNC.
func (g *Gater) doSync(f frame.Frame) (frame.Frame, error) {
	if !f.Pixels.SameShape(g.cycle.Frames[0]) {
		return f, gaterr.ErrShapeMismatch
	}

	phaseInFrames, sads, drift, err := phase.Match(g.kernel, f.Pixels, g.cycle)
	if err != nil {
		return f, fmt.Errorf("gater: %w", err)
	}
	g.driftSum += int64(drift)
	g.driftCount++

	e := float64(g.cfg.NumExtraRefFrames)
	p := g.cfg.ReferencePeriod
	currentPhase := wrapToTwoPi(2 * math.Pi * (phaseInFrames - e) / p)

	var unwrapped float64
	if !g.haveLast {
		unwrapped = currentPhase
	} else {
		delta := currentPhase - g.lastPhase
		for delta < 0 {
			delta += 2 * math.Pi
		}
		last, _ := g.history.Last()
		unwrapped = last.UnwrappedPhase + delta
	}
	g.lastPhase = currentPhase
	g.haveLast = true

	sadMin := argmin(sads)
	entry := frame.HistoryEntry{Timestamp: f.Timestamp, UnwrappedPhase: unwrapped, SADMinIndex: sadMin}
	if err := g.history.Push(entry); err != nil {
		return f, err
	}
	g.frameNum++

	f.Meta.UnwrappedPhase = unwrapped
	f.Meta.SADMinIndex = sadMin
	f.Meta.HasSync = true
	f.Meta.Sync = frame.SyncInfo{Phase: currentPhase}

	if float64(g.frameNum) > p {
		predicted, err := trigger.Predict(g.history.Entries(), g.cfg)
		if err == nil {
			decision := g.predictor.Decide(predicted, f.Timestamp, unwrapped, g.cfg)
			switch {
			case decision.Fire:
				if err := g.sink.ScheduleTrigger(predicted); err != nil {
					g.log.Error("trigger sink rejected schedule", "error", err.Error())
				} else {
					g.triggerNum++
					f.Meta.Sync.SendTrigger = true
					f.Meta.Sync.TriggerTime = predicted
					g.obs.OnTrigger(predicted, f.Timestamp)
					g.log.Info("trigger fired", "predicted", predicted, "wait", decision.Wait)
				}
			case decision.Missed:
				g.log.Debug("trigger missed: prediction too close to schedule")
			}
		}
	}

	if g.cfg.UpdateAfterNTriggers > 0 && g.triggerNum >= g.cfg.UpdateAfterNTriggers {
		g.state = Reset
	}

	return f, nil
}

func wrapToTwoPi(x float64) float64 {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x
}

func argmin(xs []uint64) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}
