/*
DESCRIPTION
  config.go defines Config, the immutable settings bundle for a gater
  session, and the field-level Update/Validate machinery used to apply
  string-keyed variable maps to it.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package config provides the gating core's configuration bundle. Unlike
// a free-form settings map, Config is a typed struct; revisions are
// produced by Update, which returns a new Config rather than mutating
// the receiver, so a Config can be safely shared by reference between a
// running Gater and any observer that took a snapshot at the last state
// transition.
package config

import (
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"
)

// Defaults, named directly after spec.md §3.
const (
	DefaultMinPeriod            = 5
	DefaultLowerThresholdFactor = 0.5
	DefaultUpperThresholdFactor = 0.75
	DefaultFrameBufferLength    = 100
	DefaultMinFramesForFit      = 5
	DefaultMaxFramesForFit      = 80
	DefaultExtrapolationFactor  = 1.5
	DefaultNumExtraRefFrames    = 2
	DefaultAlignmentAxisLength  = 80
)

// Config bundles all parameters recognised by the gating core. A zero
// Config is not valid; build one with New and Validate it before use.
type Config struct {
	ReferencePeriod      float64 // P, fractional frames.
	NumExtraRefFrames    int     // E, padding frames each side of the cycle.
	ReferenceFrame       float64 // Target phase as a reference-frame index, in [0, P).
	BarrierFrame         int     // Index in [0, N_ref) bounding C4's fit window.
	MinPeriod            int
	LowerThresholdFactor float64
	UpperThresholdFactor float64
	PredictionLatency    float64 // Seconds of safety margin before a trigger.
	FrameBufferLength    int
	UpdateAfterNTriggers int // 0 = never re-adapt.
	MinFramesForFit      int
	MaxFramesForFit      int
	ExtrapolationFactor  float64
	FrameRate            float64 // Frames per second, for extrapolation-distance checks.
	PeriodDir            string  // Directory under which reference cycles are persisted.
	AlignmentAxisLength  int     // The alignment oracle's fixed normalised-phase axis length.

	Logger   logging.Logger
	LogLevel int8
}

// TargetSyncPhase derives the target phase in [0, 2pi) from
// ReferenceFrame and ReferencePeriod, per spec.md §3.
func (c Config) TargetSyncPhase() float64 {
	if c.ReferencePeriod == 0 {
		return 0
	}
	return 2 * math.Pi * c.ReferenceFrame / c.ReferencePeriod
}

// NRef returns ceil(P) + 1 + 2*E, the reference cycle length.
func (c Config) NRef() int {
	return int(math.Ceil(c.ReferencePeriod)) + 1 + 2*c.NumExtraRefFrames
}

// New returns a Config with every field at its documented default,
// except FrameRate and Logger which the caller must supply.
func New(frameRate float64, logger logging.Logger) Config {
	return Config{
		NumExtraRefFrames:    DefaultNumExtraRefFrames,
		MinPeriod:            DefaultMinPeriod,
		LowerThresholdFactor: DefaultLowerThresholdFactor,
		UpperThresholdFactor: DefaultUpperThresholdFactor,
		FrameBufferLength:    DefaultFrameBufferLength,
		MinFramesForFit:      DefaultMinFramesForFit,
		MaxFramesForFit:      DefaultMaxFramesForFit,
		ExtrapolationFactor:  DefaultExtrapolationFactor,
		AlignmentAxisLength:  DefaultAlignmentAxisLength,
		FrameRate:            frameRate,
		Logger:               logger,
	}
}

// Validate checks for configuration errors, returning a non-nil error
// (a fatal *configuration error* per spec.md §7) if the bundle cannot
// be used to start a session.
func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("config: frame rate must be positive, got %v", c.FrameRate)
	}
	if c.MinPeriod < 2 {
		return fmt.Errorf("config: minPeriod must be >= 2, got %d", c.MinPeriod)
	}
	if c.LowerThresholdFactor <= 0 || c.LowerThresholdFactor >= c.UpperThresholdFactor {
		return fmt.Errorf("config: thresholds must satisfy 0 < lower < upper, got lower=%v upper=%v",
			c.LowerThresholdFactor, c.UpperThresholdFactor)
	}
	if c.FrameBufferLength <= 0 {
		return fmt.Errorf("config: frame_buffer_length must be positive, got %d", c.FrameBufferLength)
	}
	if c.MinFramesForFit < 2 || c.MinFramesForFit > c.MaxFramesForFit {
		return fmt.Errorf("config: minFramesForFit must satisfy 2 <= min <= max, got min=%d max=%d",
			c.MinFramesForFit, c.MaxFramesForFit)
	}
	if c.AlignmentAxisLength <= 0 {
		return fmt.Errorf("config: alignment axis length must be positive, got %d", c.AlignmentAxisLength)
	}
	if c.Logger == nil {
		return fmt.Errorf("config: logger must be set")
	}
	return nil
}

// WithReferencePeriod returns a copy of c with the reference period (and
// therefore NRef and TargetSyncPhase) updated. This is how the gater
// adopts a newly-established reference cycle without mutating any
// Config another goroutine may have snapshotted.
func (c Config) WithReferencePeriod(p float64) Config {
	c.ReferencePeriod = p
	return c
}

// WithReferenceFrame returns a copy of c with the target reference
// frame (and therefore TargetSyncPhase) updated.
func (c Config) WithReferenceFrame(f float64) Config {
	c.ReferenceFrame = f
	return c
}

// WithBarrierFrame returns a copy of c with the barrier frame updated.
func (c Config) WithBarrierFrame(b int) Config {
	c.BarrierFrame = b
	return c
}

// LogInvalidField logs that a field was bad or unset and has been
// defaulted, mirroring the teacher's Config.LogInvalidField.
func (c Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
