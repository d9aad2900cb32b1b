package tiffdir

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func writeTestTIFF(t *testing.T, path string, value uint16) {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, 1, 1))
	img.SetGray16(0, 0, color.Gray16{Y: value})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestDirReplaysInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeTestTIFF(t, filepath.Join(dir, "frame-000.tiff"), 10)
	writeTestTIFF(t, filepath.Join(dir, "frame-001.tiff"), 20)
	writeTestTIFF(t, filepath.Join(dir, "frame-002.tiff"), 30)

	d := New(dir, 10)
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	var values []uint16
	var timestamps []float64
	for f := range d.Frames() {
		values = append(values, f.Pixels.At(0, 0))
		timestamps = append(timestamps, f.Timestamp)
	}

	want := []uint16{10, 20, 30}
	if len(values) != len(want) {
		t.Fatalf("got %d frames, want %d", len(values), len(want))
	}
	for i, v := range want {
		if values[i] != v {
			t.Errorf("frame %d = %d, want %d", i, values[i], v)
		}
	}
	for i, ts := range timestamps {
		want := float64(i) / 10
		if ts != want {
			t.Errorf("timestamp %d = %v, want %v", i, ts, want)
		}
	}
}

func TestDirDoubleStartErrors(t *testing.T) {
	dir := t.TempDir()
	writeTestTIFF(t, filepath.Join(dir, "frame-000.tiff"), 1)
	d := New(dir, 10)
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()
	if err := d.Start(); err == nil {
		t.Error("second Start() = nil, want error")
	}
}

func TestDirStartOnMissingDirErrors(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "does-not-exist"), 10)
	if err := d.Start(); err == nil {
		t.Error("Start on a missing directory = nil, want error")
	}
}
