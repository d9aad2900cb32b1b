/*
DESCRIPTION
  source.go declares Source, the acquisition-side interface feeding a
  Gater: a configurable, startable/stoppable device that produces
  frame.Frame values on a channel, generalising the teacher's AVDevice
  from a raw io.Reader byte stream to the gating core's structured
  per-frame domain.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package device declares the acquisition-side Source interface and
// provides a MultiError type for validation, mirroring the shape of
// the teacher's AVDevice interface (Name/Set/Start/Stop/IsRunning)
// while replacing its io.Reader byte stream with a channel of
// frame.Frame, since the gating core's unit of data is a decoded
// brightfield image plus timestamp, not an encoded media stream.
package device

import (
	"fmt"

	"github.com/cardiogate/gogater/frame"
)

// Source describes a configurable frame source that can be started and
// stopped, from which frame.Frame values may be read on a channel.
type Source interface {
	// Name returns the name of the Source.
	Name() string

	// Start begins producing frames; Frames becomes readable once
	// Start returns successfully.
	Start() error

	// Stop halts production and closes the channel returned by
	// Frames.
	Stop() error

	// IsRunning reports whether the Source is currently producing
	// frames.
	IsRunning() bool

	// Frames returns the channel frames are delivered on. The same
	// channel is returned on every call.
	Frames() <-chan frame.Frame
}

// MultiError collects validation errors from a Source's Set method,
// mirroring the teacher's device.MultiError.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}
