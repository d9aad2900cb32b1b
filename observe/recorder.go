/*
DESCRIPTION
  recorder.go implements Observer by feeding a Gater's lifecycle events
  into a RateTracker and a Plotter, the concrete observability stack a
  server or emulation run wires in.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package observe

import (
	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater/config"
)

// Recorder is the default Observer: it feeds incoming frames to a
// RateTracker and synced frames/triggers to a Plotter.
type Recorder struct {
	Rate   *RateTracker
	Plot   *Plotter
	nRefs  int
	period float64
}

// NewRecorder returns a Recorder with a fresh RateTracker and Plotter.
func NewRecorder() *Recorder {
	return &Recorder{Rate: NewRateTracker(), Plot: NewPlotter()}
}

// OnFrame implements Observer.
func (r *Recorder) OnFrame(f frame.Frame) {
	r.Rate.Record(f.Timestamp)
	if f.Meta.HasSync {
		r.Plot.AddSample(f.Timestamp, f.Meta.UnwrappedPhase)
	}
}

// OnReferenceChange implements Observer.
func (r *Recorder) OnReferenceChange(cycle *frame.Cycle, cfg config.Config) {
	r.nRefs++
	r.period = cfg.ReferencePeriod
}

// OnTrigger implements Observer.
func (r *Recorder) OnTrigger(predictedTime, frameTime float64) {
	r.Plot.AddTrigger(frameTime, predictedTime)
}

// ReferenceCount returns how many reference cycles have been accepted
// so far in the session.
func (r *Recorder) ReferenceCount() int { return r.nRefs }

// CurrentPeriod returns the most recently accepted reference period.
func (r *Recorder) CurrentPeriod() float64 { return r.period }
