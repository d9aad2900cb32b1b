package config

import (
	"bytes"
	"testing"

	"github.com/ausocean/utils/logging"
)

func testLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

func TestNewDefaults(t *testing.T) {
	c := New(80, testLogger())
	if err := c.Validate(); err != nil {
		t.Errorf("Validate on New() defaults = %v, want nil", err)
	}
	if c.NumExtraRefFrames != DefaultNumExtraRefFrames {
		t.Errorf("NumExtraRefFrames = %d, want %d", c.NumExtraRefFrames, DefaultNumExtraRefFrames)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	c := New(80, testLogger())
	c.LowerThresholdFactor = 0.9
	c.UpperThresholdFactor = 0.5
	if err := c.Validate(); err == nil {
		t.Error("Validate with lower > upper = nil, want error")
	}
}

func TestValidateRequiresLogger(t *testing.T) {
	c := New(80, testLogger())
	c.Logger = nil
	if err := c.Validate(); err == nil {
		t.Error("Validate with nil Logger = nil, want error")
	}
}

func TestWithReferencePeriodDoesNotMutateReceiver(t *testing.T) {
	c := New(80, testLogger())
	c.ReferencePeriod = 10
	next := c.WithReferencePeriod(20)
	if c.ReferencePeriod != 10 {
		t.Errorf("receiver ReferencePeriod = %v, want unchanged 10", c.ReferencePeriod)
	}
	if next.ReferencePeriod != 20 {
		t.Errorf("next.ReferencePeriod = %v, want 20", next.ReferencePeriod)
	}
}

func TestTargetSyncPhase(t *testing.T) {
	c := New(80, testLogger())
	c = c.WithReferencePeriod(20).WithReferenceFrame(5)
	got := c.TargetSyncPhase()
	want := 2 * 3.141592653589793 * 5 / 20
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TargetSyncPhase() = %v, want %v", got, want)
	}
}

func TestNRef(t *testing.T) {
	c := New(80, testLogger())
	c.ReferencePeriod = 20.4
	c.NumExtraRefFrames = 2
	if got, want := c.NRef(), 26; got != want {
		t.Errorf("NRef() = %d, want %d", got, want)
	}
}

func TestUpdateAppliesAndValidates(t *testing.T) {
	c := New(80, testLogger())
	next := c.Update(map[string]string{
		KeyReferencePeriod: "24.5",
		KeyMinPeriod:       "0", // invalid, should be defaulted by Validate
	})
	if next.ReferencePeriod != 24.5 {
		t.Errorf("ReferencePeriod = %v, want 24.5", next.ReferencePeriod)
	}
	if next.MinPeriod != DefaultMinPeriod {
		t.Errorf("MinPeriod = %d, want default %d after invalid update", next.MinPeriod, DefaultMinPeriod)
	}
	if c.ReferencePeriod != 0 {
		t.Errorf("receiver mutated by Update: ReferencePeriod = %v, want 0", c.ReferencePeriod)
	}
}

func TestUpdateIgnoresUnparsableValue(t *testing.T) {
	c := New(80, testLogger())
	c.ReferencePeriod = 7
	next := c.Update(map[string]string{KeyReferencePeriod: "not-a-number"})
	if next.ReferencePeriod != 7 {
		t.Errorf("ReferencePeriod after unparsable update = %v, want unchanged 7", next.ReferencePeriod)
	}
}

func TestUpdateIgnoresUnknownKey(t *testing.T) {
	c := New(80, testLogger())
	next := c.Update(map[string]string{"not_a_real_key": "1"})
	if next != c {
		t.Errorf("Update with unknown key changed the config: got %+v, want %+v", next, c)
	}
}
