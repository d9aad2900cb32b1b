/*
DESCRIPTION
  rate.go implements a windowed frame-rate tracker, reporting the
  effective frames-per-second rate at which a Gater is being driven.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package observe

import "sync"

// defaultWindow is the number of most recent frame timestamps kept for
// the rate computation.
const defaultWindow = 50

// RateTracker computes an effective frame rate from a sliding window of
// frame timestamps. The teacher tracks outbound bitrate with
// ausocean/utils/bitrate.Calculator, reported via a callback on every
// write; that package's API beyond its call sites (Report, Bitrate)
// is not present in the retrieval pack, so this tracker is a minimal
// stdlib equivalent for the one rate this core needs: incoming frame
// rate, not encoded bitrate.
type RateTracker struct {
	mu     sync.Mutex
	window int
	times  []float64
}

// NewRateTracker returns a RateTracker using the default window size.
func NewRateTracker() *RateTracker {
	return &RateTracker{window: defaultWindow}
}

// Record appends a frame timestamp (in seconds), evicting the oldest
// if the window is full.
func (r *RateTracker) Record(timestamp float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, timestamp)
	if len(r.times) > r.window {
		r.times = r.times[1:]
	}
}

// Rate returns the effective frames-per-second over the current
// window, or 0 if fewer than two samples have been recorded.
func (r *RateTracker) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.times)
	if n < 2 {
		return 0
	}
	span := r.times[n-1] - r.times[0]
	if span <= 0 {
		return 0
	}
	return float64(n-1) / span
}
