/*
DESCRIPTION
  sink.go declares the gating core's two out-interfaces: the trigger
  sink that fires the external fluorescence acquisition, and the
  alignment oracle that keeps phase-lock across reference regenerations.
  Both are treated as opaque collaborators by the core (SPEC_FULL.md §6).

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package sink declares the out-interfaces the gating core calls into:
// the trigger sink (camera/laser hardware) and the alignment oracle
// (adaptive cross-generation phase-lock). Concrete implementations live
// outside this package; gater depends only on these interfaces.
package sink

import (
	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
)

// TriggerSink fires the external fluorescence acquisition at (or as
// close as possible to) the given absolute time.
type TriggerSink interface {
	ScheduleTrigger(absTimeS float64) error
}

// AlignmentOracle maps a newly-established reference cycle onto a
// fixed, cross-generation normalised phase axis, given the new cycle,
// its period, and a drift estimate. It is a pure function over
// accumulated internal state; the core never inspects that state, only
// the returned target index.
type AlignmentOracle interface {
	Update(cycle *frame.Cycle, period float64, drift int) (target int, err error)
}

// LogSink is a TriggerSink that logs the scheduled time rather than
// firing real hardware, for demonstration and development use when no
// camera/laser controller is wired up.
type LogSink struct {
	Logger logging.Logger
}

// ScheduleTrigger implements TriggerSink.
func (s LogSink) ScheduleTrigger(absTimeS float64) error {
	s.Logger.Info("trigger scheduled", "abs_time_s", absTimeS)
	return nil
}
