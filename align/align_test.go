package align

import (
	"testing"

	"github.com/cardiogate/gogater/frame"
)

func testCycle(t *testing.T, values []uint16, extra int) *frame.Cycle {
	t.Helper()
	frames := make([]frame.Pixels, len(values))
	for i, v := range values {
		frames[i] = frame.NewPixels16(1, 1, []uint16{v})
	}
	c, err := frame.NewCycle(frames, float64(len(values)-1-2*extra)-0.5, extra)
	if err != nil {
		t.Fatalf("NewCycle: %v", err)
	}
	return c
}

func TestUpdateFirstCallTargetZero(t *testing.T) {
	o := New(8)
	c := testCycle(t, []uint16{0, 0, 10, 20, 30, 40, 50, 60, 70, 80, 0, 0}, 2)
	target, err := o.Update(c, c.Period, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if target != 0 {
		t.Errorf("first Update target = %d, want 0", target)
	}
}

func TestUpdateStableOnIdenticalCycle(t *testing.T) {
	o := New(8)
	c := testCycle(t, []uint16{0, 0, 10, 20, 30, 40, 50, 60, 70, 80, 0, 0}, 2)
	first, err := o.Update(c, c.Period, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	second, err := o.Update(c, c.Period, 0)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if second != first {
		t.Errorf("Update on an unchanged cycle moved target from %d to %d, want stable", first, second)
	}
}

func TestUpdateRejectsTooShortCycle(t *testing.T) {
	o := New(8)
	frames := []frame.Pixels{
		frame.NewPixels16(1, 1, []uint16{1}),
		frame.NewPixels16(1, 1, []uint16{2}),
		frame.NewPixels16(1, 1, []uint16{3}),
	}
	c := &frame.Cycle{Frames: frames, Period: 1, Extra: 2}
	if _, err := o.Update(c, 1, 0); err == nil {
		t.Error("Update on a cycle too short to resample = nil error, want error")
	}
}

func TestHistoryTracksCalls(t *testing.T) {
	o := New(8)
	c := testCycle(t, []uint16{0, 0, 10, 20, 30, 40, 50, 60, 70, 80, 0, 0}, 2)
	o.Update(c, c.Period, 0)
	o.Update(c, c.Period, 1)
	shifts, drifts := o.History()
	if len(shifts) != 2 || len(drifts) != 2 {
		t.Fatalf("History() = (%v,%v), want length-2 slices", shifts, drifts)
	}
	if drifts[1] != 1 {
		t.Errorf("drifts[1] = %d, want 1", drifts[1])
	}
}
