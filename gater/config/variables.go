/*
DESCRIPTION
  variables.go provides a list of recognised configuration variables,
  each with a Name, a parser from string into the corresponding Config
  field, and the value Update applies to a map of string-keyed updates.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package config

import "strconv"

// Recognised variable names, matching the field names in spec.md §3.
const (
	KeyReferencePeriod      = "reference_period"
	KeyNumExtraRefFrames    = "numExtraRefFrames"
	KeyReferenceFrame       = "referenceFrame"
	KeyBarrierFrame         = "barrier_frame"
	KeyMinPeriod            = "minPeriod"
	KeyLowerThresholdFactor = "lowerThresholdFactor"
	KeyUpperThresholdFactor = "upperThresholdFactor"
	KeyPredictionLatency    = "predictionLatency"
	KeyFrameBufferLength    = "frame_buffer_length"
	KeyUpdateAfterNTriggers = "update_after_n_triggers"
	KeyMinFramesForFit      = "minFramesForFit"
	KeyMaxFramesForFit      = "maxFramesForFit"
	KeyExtrapolationFactor  = "extrapolationFactor"
	KeyPeriodDir            = "period_dir"
)

// variable describes one recognised configuration field: its name, how
// to parse an incoming string value into Config, and (optionally) a
// validation/default pass run after all updates from a batch are
// applied.
type variable struct {
	Name     string
	Update   func(*Config, string) error
	Validate func(*Config)
}

// Variables lists every field update recognises, in the order they are
// applied.
var Variables = []variable{
	{Name: KeyReferencePeriod, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.ReferencePeriod = f
		return nil
	}},
	{Name: KeyNumExtraRefFrames, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.NumExtraRefFrames = n
		return nil
	}},
	{Name: KeyReferenceFrame, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.ReferenceFrame = f
		return nil
	}},
	{Name: KeyBarrierFrame, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.BarrierFrame = n
		return nil
	}},
	{Name: KeyMinPeriod, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MinPeriod = n
		return nil
	}, Validate: func(c *Config) {
		if c.MinPeriod <= 0 {
			c.LogInvalidField(KeyMinPeriod, DefaultMinPeriod)
			c.MinPeriod = DefaultMinPeriod
		}
	}},
	{Name: KeyLowerThresholdFactor, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.LowerThresholdFactor = f
		return nil
	}, Validate: func(c *Config) {
		if c.LowerThresholdFactor <= 0 {
			c.LogInvalidField(KeyLowerThresholdFactor, DefaultLowerThresholdFactor)
			c.LowerThresholdFactor = DefaultLowerThresholdFactor
		}
	}},
	{Name: KeyUpperThresholdFactor, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.UpperThresholdFactor = f
		return nil
	}, Validate: func(c *Config) {
		if c.UpperThresholdFactor <= 0 {
			c.LogInvalidField(KeyUpperThresholdFactor, DefaultUpperThresholdFactor)
			c.UpperThresholdFactor = DefaultUpperThresholdFactor
		}
	}},
	{Name: KeyPredictionLatency, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.PredictionLatency = f
		return nil
	}},
	{Name: KeyFrameBufferLength, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.FrameBufferLength = n
		return nil
	}, Validate: func(c *Config) {
		if c.FrameBufferLength <= 0 {
			c.LogInvalidField(KeyFrameBufferLength, DefaultFrameBufferLength)
			c.FrameBufferLength = DefaultFrameBufferLength
		}
	}},
	{Name: KeyUpdateAfterNTriggers, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.UpdateAfterNTriggers = n
		return nil
	}},
	{Name: KeyMinFramesForFit, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MinFramesForFit = n
		return nil
	}, Validate: func(c *Config) {
		if c.MinFramesForFit <= 0 {
			c.LogInvalidField(KeyMinFramesForFit, DefaultMinFramesForFit)
			c.MinFramesForFit = DefaultMinFramesForFit
		}
	}},
	{Name: KeyMaxFramesForFit, Update: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MaxFramesForFit = n
		return nil
	}, Validate: func(c *Config) {
		if c.MaxFramesForFit <= 0 {
			c.LogInvalidField(KeyMaxFramesForFit, DefaultMaxFramesForFit)
			c.MaxFramesForFit = DefaultMaxFramesForFit
		}
	}},
	{Name: KeyExtrapolationFactor, Update: func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.ExtrapolationFactor = f
		return nil
	}, Validate: func(c *Config) {
		if c.ExtrapolationFactor <= 0 {
			c.LogInvalidField(KeyExtrapolationFactor, DefaultExtrapolationFactor)
			c.ExtrapolationFactor = DefaultExtrapolationFactor
		}
	}},
	{Name: KeyPeriodDir, Update: func(c *Config, v string) error {
		c.PeriodDir = v
		return nil
	}},
}

// Update takes a map of variable names to string values and returns a
// new Config with the recognised ones applied and re-validated. The
// receiver is left untouched: callers that hold a reference to the
// prior Config (e.g. an observer that snapshotted it at the last state
// transition) are unaffected by this call.
func (c Config) Update(vars map[string]string) Config {
	next := c
	for _, decl := range Variables {
		v, ok := vars[decl.Name]
		if !ok {
			continue
		}
		if err := decl.Update(&next, v); err != nil {
			next.LogInvalidField(decl.Name, "unparsable: "+v)
			continue
		}
	}
	for _, decl := range Variables {
		if decl.Validate != nil {
			decl.Validate(&next)
		}
	}
	return next
}
