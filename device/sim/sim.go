/*
DESCRIPTION
  sim.go provides a synthetic one-pixel sinusoidal frame source, used
  to drive end-to-end gating sessions without real acquisition
  hardware or pre-recorded TIFF sequences.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package sim implements a device.Source that generates a synthetic
// one-pixel sinusoidal brightness signal, the S1 scenario of
// SPEC_FULL.md §11: intensity 128 + 100*sin(2*pi*t*freq) at a fixed
// frame rate.
package sim

import (
	"fmt"
	"math"
	"sync"

	"github.com/cardiogate/gogater/device"
	"github.com/cardiogate/gogater/frame"
)

// Sinusoid is a device.Source producing single-pixel frames whose
// intensity follows a sine wave. A zero Sinusoid is not ready to use;
// construct one with New.
type Sinusoid struct {
	frameRate  float64
	freq       float64
	numFrames  int
	amplitude  float64
	offset     float64

	mu        sync.Mutex
	isRunning bool
	out       chan frame.Frame
}

// New returns a Sinusoid generating numFrames frames at frameRate fps,
// of intensity offset + amplitude*sin(2*pi*t*freq).
func New(frameRate, freq float64, numFrames int, amplitude, offset float64) *Sinusoid {
	return &Sinusoid{
		frameRate: frameRate,
		freq:      freq,
		numFrames: numFrames,
		amplitude: amplitude,
		offset:    offset,
	}
}

// Name returns the name of the Source.
func (s *Sinusoid) Name() string { return "Sinusoid" }

// Start begins generating frames on a background goroutine; the
// channel returned by Frames is closed once numFrames have been sent
// or Stop is called.
func (s *Sinusoid) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("sim: already running")
	}
	s.out = make(chan frame.Frame)
	s.isRunning = true
	go s.generate()
	return nil
}

func (s *Sinusoid) generate() {
	defer close(s.out)
	for i := 0; i < s.numFrames; i++ {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		if !running {
			return
		}
		t := float64(i) / s.frameRate
		v := s.offset + s.amplitude*math.Sin(2*math.Pi*t*s.freq)
		px := frame.NewPixels16(1, 1, []uint16{uint16(math.Round(v))})
		s.out <- frame.Frame{Pixels: px, Timestamp: t}
	}
}

// Stop halts generation; Frames' channel is closed by the generating
// goroutine shortly afterward.
func (s *Sinusoid) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRunning = false
	return nil
}

// IsRunning reports whether the Sinusoid is currently generating
// frames.
func (s *Sinusoid) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Frames returns the channel frames are delivered on.
func (s *Sinusoid) Frames() <-chan frame.Frame { return s.out }

var _ device.Source = (*Sinusoid)(nil)
