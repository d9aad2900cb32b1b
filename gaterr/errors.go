/*
DESCRIPTION
  errors.go centralises the sentinel errors named in SPEC_FULL.md §7's
  error-kind table, so every package that can raise one of these
  conditions (and every caller that needs to distinguish transient from
  fatal) refers to the same value.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package gaterr declares the gating core's sentinel errors, split into
// transient conditions the state machine tolerates and fatal conditions
// that abort a session.
package gaterr

import "errors"

// Transient errors: the state machine stays in its current state and
// waits for the next frame.
var (
	ErrNoPeriod     = errors.New("period: no period found yet")
	ErrNoPrediction = errors.New("trigger: no prediction available")
	ErrMissed       = errors.New("trigger: prediction too close to schedule, trigger missed")
)

// Fatal errors: the session must abort.
var (
	ErrBadConfig     = errors.New("gater: invalid configuration")
	ErrShapeMismatch = errors.New("frame: shape mismatch against reference cycle")
	ErrOutOfOrder    = errors.New("frame: out-of-order timestamp")
	ErrStopped       = errors.New("gater: stopped")
)
