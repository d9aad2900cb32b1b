/*
DESCRIPTION
  observe.go declares the Observer hook the gater calls out to on every
  frame, reference-cycle change and trigger, and a no-op implementation
  for callers that do not need observability.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package observe provides optional observability hooks for a running
// gater: frame-rate tracking and diagnostic plotting, grounded on the
// rate/plot tooling SPEC_FULL.md §10 adds beyond spec.md's scope.
package observe

import (
	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater/config"
)

// Observer receives gater lifecycle events. Implementations must
// return promptly: calls are made synchronously from the frame that
// produced them.
type Observer interface {
	// OnFrame is called once per frame accepted by Process, in every
	// state.
	OnFrame(f frame.Frame)

	// OnReferenceChange is called whenever a new reference cycle is
	// accepted (DETERMINE or ADAPT), with the configuration in effect
	// immediately after acceptance (target frame, barrier frame, period).
	OnReferenceChange(cycle *frame.Cycle, cfg config.Config)

	// OnTrigger is called whenever a trigger is actually scheduled,
	// with the predicted absolute trigger time and the frame timestamp
	// that produced the decision.
	OnTrigger(predictedTime, frameTime float64)
}

// NoOp is an Observer that discards every event.
type NoOp struct{}

func (NoOp) OnFrame(frame.Frame)                     {}
func (NoOp) OnReferenceChange(*frame.Cycle, config.Config) {}
func (NoOp) OnTrigger(float64, float64)              {}
