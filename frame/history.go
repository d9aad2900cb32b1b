/*
DESCRIPTION
  history.go provides History, a bounded FIFO of recently-processed
  frames (timestamp, unwrapped phase, argmin-SAD index), and
  PeriodHistory, the append-only record of period-finder estimates used
  to gate reference-period acceptance.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package frame

import (
	"fmt"

	"github.com/cardiogate/gogater/gaterr"
)

// History is a bounded, strict-FIFO buffer of HistoryEntry, used by the
// gater in SYNC mode. Eviction is oldest-first once the buffer reaches
// its configured length.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory returns a History bounded to limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push appends e, evicting the oldest entry first if the buffer is
// full. It returns an error if e's timestamp does not strictly exceed
// the most recently pushed entry's timestamp (frames must arrive in
// order).
func (h *History) Push(e HistoryEntry) error {
	if n := len(h.entries); n > 0 && e.Timestamp <= h.entries[n-1].Timestamp {
		return fmt.Errorf("%w: %.6f <= %.6f", gaterr.ErrOutOfOrder, e.Timestamp, h.entries[n-1].Timestamp)
	}
	if len(h.entries) >= h.limit {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, e)
	return nil
}

// Len returns the number of entries currently retained.
func (h *History) Len() int { return len(h.entries) }

// Entries returns the retained entries, oldest first. The returned
// slice aliases internal storage and must not be retained past the
// next Push.
func (h *History) Entries() []HistoryEntry { return h.entries }

// Last returns the most recently pushed entry, and false if History is
// empty.
func (h *History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Reset clears all retained entries.
func (h *History) Reset() { h.entries = h.entries[:0] }

// PeriodHistory is the append-only list of fractional periods computed
// during DETERMINE/ADAPT, used to gate period acceptance via the
// stability rule in gater.
type PeriodHistory struct {
	values []float64
}

// Append records a newly-computed period estimate.
func (p *PeriodHistory) Append(period float64) { p.values = append(p.values, period) }

// Len returns the number of recorded periods.
func (p *PeriodHistory) Len() int { return len(p.values) }

// At returns the period recorded at index i (0-based, oldest first).
func (p *PeriodHistory) At(i int) float64 { return p.values[i] }

// FromEnd returns the period recorded n entries back from the most
// recent (FromEnd(0) is the latest), and false if there is no such
// entry.
func (p *PeriodHistory) FromEnd(n int) (float64, bool) {
	idx := len(p.values) - 1 - n
	if idx < 0 || idx >= len(p.values) {
		return 0, false
	}
	return p.values[idx], true
}

// Reset clears all recorded periods.
func (p *PeriodHistory) Reset() { p.values = p.values[:0] }
