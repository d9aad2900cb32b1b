/*
DESCRIPTION
  tiffdir.go provides a device.Source that replays a directory of
  single-page TIFF images, in filename order, as a timestamped frame
  sequence, used for offline emulation against pre-recorded sequences.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package tiffdir implements a device.Source that replays a directory
// of TIFF images at a fixed frame rate, supplementing spec.md with the
// offline "emulation mode" run described in SPEC_FULL.md §10 (the
// original implementation's equivalent read frames from disk rather
// than a live camera for repeatable testing).
package tiffdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/image/tiff"

	"github.com/cardiogate/gogater/device"
	"github.com/cardiogate/gogater/frame"
)

// Dir is a device.Source replaying TIFF files from a directory.
type Dir struct {
	dir       string
	frameRate float64

	mu        sync.Mutex
	isRunning bool
	out       chan frame.Frame
}

// New returns a Dir replaying the TIFF files in dir, in lexical
// filename order, spaced 1/frameRate seconds apart.
func New(dir string, frameRate float64) *Dir {
	return &Dir{dir: dir, frameRate: frameRate}
}

// Name returns the name of the Source.
func (d *Dir) Name() string { return "TIFFDir" }

// Start begins replaying frames on a background goroutine.
func (d *Dir) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return fmt.Errorf("tiffdir: already running")
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("tiffdir: could not list %s: %w", d.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	d.out = make(chan frame.Frame)
	d.isRunning = true
	go d.replay(names)
	return nil
}

func (d *Dir) replay(names []string) {
	defer close(d.out)
	for i, name := range names {
		d.mu.Lock()
		running := d.isRunning
		d.mu.Unlock()
		if !running {
			return
		}

		px, err := readTIFF(filepath.Join(d.dir, name))
		if err != nil {
			continue
		}
		t := float64(i) / d.frameRate
		d.out <- frame.Frame{Pixels: px, Timestamp: t}
	}
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
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]uint16, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			data[y*w+x] = uint16(r)
		}
	}
	return frame.NewPixels16(h, w, data), nil
}

// Stop halts replay.
func (d *Dir) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.isRunning = false
	return nil
}

// IsRunning reports whether the Dir is currently replaying frames.
func (d *Dir) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

// Frames returns the channel frames are delivered on.
func (d *Dir) Frames() <-chan frame.Frame { return d.out }

var _ device.Source = (*Dir)(nil)
