/*
DESCRIPTION
  store.go persists reference cycles as directories of single-page
  TIFF files and reads them back (Load, LoadDir). The gater saves each
  accepted reference cycle; it does not reload one at startup.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package store persists reference cycles to disk as directories of
// single-page TIFF images, one file per frame, and reads them back
// with Load or LoadDir. This is the one piece of SPEC_FULL.md's domain stack not
// present in the teacher repo at all: the teacher only ever streamed
// encoded video out; it never needed to round-trip raw per-pixel
// reference data, so the image codec is adopted straight from
// golang.org/x/image/tiff, the library the rest of the retrieval pack
// uses for this job.
package store

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/tiff"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
)

// isoTimestampFormat renders a time as a filesystem-safe ISO8601
// timestamp (basic format, no colons), per SPEC_FULL.md §6's
// "<period_dir>/<ISO8601_timestamp>/NNN.tiff" layout.
const isoTimestampFormat = "20060102T150405.000000000Z"

// Store reads and writes reference cycles under a directory, one
// subdirectory per accepted cycle, named for the moment it was saved.
type Store struct {
	dir     string
	log     logging.Logger
	now     func() time.Time
	n       int
	lastDir string
}

// New returns a Store rooted at dir. The directory is created if it
// does not already exist.
func New(dir string, log logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: could not create directory: %w", err)
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

// Save writes cycle as a directory of single-page TIFF files, one per
// frame in order (x/image/tiff, like the standard library's image
// codecs, encodes and decodes a single image per call; there is no
// multi-page API to build on), under an ISO8601-timestamped
// subdirectory of the period directory. Load reads back the directory
// written last.
func (s *Store) Save(cycle *frame.Cycle) (err error) {
	name := s.now().UTC().Format(isoTimestampFormat)
	dir := filepath.Join(s.dir, name)
	s.lastDir = dir
	s.n++
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: could not create %s: %w", dir, err)
	}

	for i, p := range cycle.Frames {
		path := filepath.Join(dir, fmt.Sprintf("%03d.tiff", i))
		if err := writeTIFF(path, p); err != nil {
			return fmt.Errorf("store: could not write frame %d of %s: %w", i, dir, err)
		}
	}
	s.log.Debug("persisted reference cycle", "dir", dir, "frames", cycle.N())
	return nil
}

func writeTIFF(path string, p frame.Pixels) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return tiff.Encode(f, toGray16(p), nil)
}

// Load reads the most recently written reference cycle back from
// disk, given the period and padding count it was saved with (TIFF
// alone does not carry the fitted period, only the pixel data).
func (s *Store) Load(period float64, extra int) (*frame.Cycle, error) {
	if s.n == 0 {
		return nil, fmt.Errorf("store: no reference cycle has been saved")
	}
	return LoadDir(s.lastDir, period, extra)
}

// LoadDir reads a reference-cycle directory written by Save, given the
// period and padding count it was saved with.
func LoadDir(dir string, period float64, extra int) (*frame.Cycle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("store: could not list %s: %w", dir, err)
	}
	frames := make([]frame.Pixels, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p, err := readTIFF(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("store: could not read %s: %w", e.Name(), err)
		}
		frames = append(frames, p)
	}
	return frame.NewCycle(frames, period, extra)
}

func readTIFF(path string) (frame.Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return frame.Pixels{}, err
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		return frame.Pixels{}, err
	}
	return fromGray16(img), nil
}

// toGray16 converts a Pixels buffer into a standard library Gray16
// image suitable for TIFF encoding.
func toGray16(p frame.Pixels) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			v := p.At(y, x)
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

// fromGray16 converts a decoded TIFF page back into a Pixels buffer,
// preserving 16-bit depth regardless of the page's original bit depth
// (tiff.Decode always yields 16-bit-addressable colour values).
func fromGray16(img image.Image) frame.Pixels {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]uint16, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			data[y*w+x] = g.Y
		}
	}
	return frame.NewPixels16(h, w, data)
}

