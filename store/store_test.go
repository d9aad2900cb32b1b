package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
)

func testLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

func testCycle(t *testing.T) *frame.Cycle {
	t.Helper()
	frames := []frame.Pixels{
		frame.NewPixels16(2, 2, []uint16{0, 1, 2, 3}),
		frame.NewPixels16(2, 2, []uint16{10, 11, 12, 13}),
		frame.NewPixels16(2, 2, []uint16{20, 21, 22, 23}),
	}
	c, err := frame.NewCycle(frames, 7, 1)
	if err != nil {
		t.Fatalf("NewCycle: %v", err)
	}
	return c
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cycle := testCycle(t)
	if err := s.Save(cycle); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(7, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.N() != cycle.N() {
		t.Fatalf("Load() N() = %d, want %d", got.N(), cycle.N())
	}
	for i, want := range cycle.Frames {
		gotFrame := got.Frames[i]
		if !gotFrame.SameShape(want) {
			t.Fatalf("frame %d shape = %dx%d, want %dx%d", i, gotFrame.H, gotFrame.W, want.H, want.W)
		}
		for j := range want.Data {
			if gotFrame.Data[j] != want.Data[j] {
				t.Errorf("frame %d pixel %d = %d, want %d", i, j, gotFrame.Data[j], want.Data[j])
			}
		}
	}
}

func TestSaveWritesOneFilePerFrame(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stamp := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }
	cycle := testCycle(t)
	if err := s.Save(cycle); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantDir := filepath.Join(dir, stamp.Format(isoTimestampFormat))
	entries, err := filepath.Glob(filepath.Join(wantDir, "[0-9][0-9][0-9].tiff"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(entries) != cycle.N() {
		t.Errorf("wrote %d files, want %d", len(entries), cycle.N())
	}
}

func TestSaveNamesDirectoryAfterISO8601Timestamp(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stamp := time.Date(2026, 7, 31, 9, 30, 15, 0, time.UTC)
	s.now = func() time.Time { return stamp }
	if err := s.Save(testCycle(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := filepath.Join(dir, "20260731T093015.000000000Z")
	if s.lastDir != want {
		t.Errorf("lastDir = %q, want %q", s.lastDir, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected directory %q to exist: %v", want, err)
	}
}

func TestLoadBeforeSaveErrors(t *testing.T) {
	s, err := New(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Load(7, 1); err == nil {
		t.Error("Load before any Save = nil error, want error")
	}
}
