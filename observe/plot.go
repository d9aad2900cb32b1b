/*
DESCRIPTION
  plot.go renders the unwrapped-phase trace and trigger markers of a
  gating session to a PNG, for offline diagnosis of a run.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package observe

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plotter accumulates a session's phase trace and trigger times and
// renders them to a PNG, supplementing spec.md with the diagnostic
// visualisation SPEC_FULL.md §10 adds (the original implementation
// plots via matplotlib during development; gonum/plot is this
// ecosystem's equivalent).
type Plotter struct {
	times     []float64
	phases    []float64
	triggersX []float64
	triggersY []float64
}

// NewPlotter returns an empty Plotter.
func NewPlotter() *Plotter { return &Plotter{} }

// AddSample records one synced frame's timestamp and unwrapped phase.
func (p *Plotter) AddSample(timestamp, unwrappedPhase float64) {
	p.times = append(p.times, timestamp)
	p.phases = append(p.phases, unwrappedPhase)
}

// AddTrigger records a fired trigger at (frameTime, phase) for overlay
// on the phase trace.
func (p *Plotter) AddTrigger(frameTime, phase float64) {
	p.triggersX = append(p.triggersX, frameTime)
	p.triggersY = append(p.triggersY, phase)
}

// Save renders the accumulated phase trace (with trigger markers) to a
// PNG at path.
func (p *Plotter) Save(path string, width, height vg.Length) error {
	plt := plot.New()
	plt.Title.Text = "unwrapped phase"
	plt.X.Label.Text = "time (s)"
	plt.Y.Label.Text = "phase (rad)"

	phasePts := make(plotter.XYs, len(p.times))
	for i := range p.times {
		phasePts[i].X = p.times[i]
		phasePts[i].Y = p.phases[i]
	}
	line, err := plotter.NewLine(phasePts)
	if err != nil {
		return fmt.Errorf("observe: could not build phase line: %w", err)
	}
	plt.Add(line)

	if len(p.triggersX) > 0 {
		trigPts := make(plotter.XYs, len(p.triggersX))
		for i := range p.triggersX {
			trigPts[i].X = p.triggersX[i]
			trigPts[i].Y = p.triggersY[i]
		}
		scatter, err := plotter.NewScatter(trigPts)
		if err != nil {
			return fmt.Errorf("observe: could not build trigger scatter: %w", err)
		}
		plt.Add(scatter)
	}

	if err := plt.Save(width, height, path); err != nil {
		return fmt.Errorf("observe: could not save plot: %w", err)
	}
	return nil
}
