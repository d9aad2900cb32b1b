package trigger

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater/config"
)

func testConfig() config.Config {
	l := logging.New(logging.Debug, &bytes.Buffer{}, true)
	c := config.New(80, l)
	c.ReferencePeriod = 20
	c.NumExtraRefFrames = 2
	c.MinFramesForFit = 2
	c.MaxFramesForFit = 10
	c.BarrierFrame = 0
	return c
}

func TestPredictAdvancingPhase(t *testing.T) {
	cfg := testConfig()
	var hist []frame.HistoryEntry
	for i := 0; i < 5; i++ {
		t := float64(i) * 0.1
		hist = append(hist, frame.HistoryEntry{Timestamp: t, UnwrappedPhase: t * 12, SADMinIndex: i})
	}
	tHat, err := Predict(hist, cfg)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if tHat <= hist[len(hist)-1].Timestamp {
		t.Errorf("tHat = %v, want > last timestamp %v", tHat, hist[len(hist)-1].Timestamp)
	}
}

func TestPredictFlatPhaseRejected(t *testing.T) {
	cfg := testConfig()
	var hist []frame.HistoryEntry
	for i := 0; i < 5; i++ {
		hist = append(hist, frame.HistoryEntry{Timestamp: float64(i) * 0.1, UnwrappedPhase: 1.0, SADMinIndex: i})
	}
	if _, err := Predict(hist, cfg); !errors.Is(err, ErrNoPrediction) {
		t.Errorf("Predict on flat phase = %v, want ErrNoPrediction", err)
	}
}

func TestPredictTooFewFrames(t *testing.T) {
	cfg := testConfig()
	hist := []frame.HistoryEntry{{Timestamp: 0, UnwrappedPhase: 0}}
	if _, err := Predict(hist, cfg); !errors.Is(err, ErrNoPrediction) {
		t.Errorf("Predict with one frame = %v, want ErrNoPrediction", err)
	}
}

func TestDecideMissedThenFire(t *testing.T) {
	// S4 of spec.md §8: predictionLatency = 0.010, delta = 0.005 misses
	// on the first frame; the following frame's re-fit pushes delta
	// back above the latency floor and must still be allowed to fire,
	// since a miss does not suppress the rest of the crossing.
	cfg := testConfig()
	cfg.PredictionLatency = 0.010
	cfg.FrameRate = 80
	cfg.ReferencePeriod = 20

	var p Predictor
	currentPhase := 0.0

	now1 := 1.0
	tHat1 := now1 + 0.005
	d1 := p.Decide(tHat1, now1, currentPhase, cfg)
	if !d1.Missed || d1.Fire {
		t.Fatalf("first Decide with delta < latency = %+v, want Missed", d1)
	}

	now2 := 1.001
	tHat2 := now2 + 0.02
	d2 := p.Decide(tHat2, now2, currentPhase, cfg)
	if !d2.Fire || d2.Suppress {
		t.Errorf("second Decide in the same cycle after a miss = %+v, want Fire", d2)
	}
}

func TestDecideFiresOnceThenSuppresses(t *testing.T) {
	cfg := testConfig()
	cfg.PredictionLatency = 0.001
	cfg.FrameRate = 80
	cfg.ReferencePeriod = 20

	var p Predictor
	now := 1.0
	tHat := now + 0.01
	currentPhase := 0.0

	d1 := p.Decide(tHat, now, currentPhase, cfg)
	if !d1.Fire {
		t.Fatalf("first Decide = %+v, want Fire", d1)
	}

	// Same cycle: a second call at the same currentPhase must be
	// suppressed, so at most one trigger is emitted per crossing.
	d2 := p.Decide(tHat, now, currentPhase, cfg)
	if !d2.Suppress {
		t.Errorf("second Decide in the same cycle = %+v, want Suppress", d2)
	}
}

func TestUnwrapPhaseSequence(t *testing.T) {
	// S3 of spec.md §8.
	in := []float64{0.1, 0.5, 1.0, 2.0, 3.0, 0.2, 1.0}
	want := []float64{0.1, 0.5, 1.0, 2.0, 3.0, 2*math.Pi + 0.2, 2*math.Pi + 1.0}

	unwrapped := make([]float64, len(in))
	unwrapped[0] = in[0]
	for i := 1; i < len(in); i++ {
		delta := in[i] - in[i-1]
		for delta < 0 {
			delta += 2 * math.Pi
		}
		unwrapped[i] = unwrapped[i-1] + delta
	}

	for i := range want {
		if math.Abs(unwrapped[i]-want[i]) > 1e-9 {
			t.Errorf("unwrapped[%d] = %v, want %v", i, unwrapped[i], want[i])
		}
	}
}
