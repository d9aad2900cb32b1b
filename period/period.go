/*
DESCRIPTION
  period.go implements the period finder: given a vector of SADs
  between the latest frame and its predecessors, scan backwards for one
  full heartbeat and return its fractional length.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package period finds the fractional period of a quasi-periodic
// signal from a backwards-looking vector of frame-difference scores.
package period

import (
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/vfit"
)

// Find scans diffs backwards from the latest frame (diffs[len-1], which
// compares the latest frame with itself and is expected near zero)
// looking for one confirmed valley-then-rise, per the two-stage FSM in
// SPEC_FULL.md §4.2. It returns the sub-frame-refined period and true
// on success, or false if no period could be confirmed.
func Find(diffs []uint64, cfg config.Config) (float64, bool) {
	n := len(diffs)
	if n < 2 {
		return 0, false
	}

	minPeriod := cfg.MinPeriod
	if minPeriod < 1 {
		minPeriod = 1
	}

	const (
		stageSeekValley = 1
		stageConfirm    = 2
	)

	score := float64(diffs[n-1])
	minScore := score
	maxScore := score
	minSinceMax := score
	deltaStar := 0
	stage := stageSeekValley
	confirmed := false

	for d := minPeriod; d <= n-1; d++ {
		if n-1-d < 0 {
			break
		}
		score = float64(diffs[n-1-d])

		lower := minScore + cfg.LowerThresholdFactor*(maxScore-minScore)
		upper := minScore + cfg.UpperThresholdFactor*(maxScore-minScore)

		if stage == stageSeekValley && score < lower {
			stage = stageConfirm
		}
		if stage == stageConfirm && score > upper {
			confirmed = true
			break
		}

		if score > maxScore {
			maxScore = score
			minSinceMax = score
			deltaStar = d
			stage = stageSeekValley
		} else {
			if score != 0 && (minScore == 0 || score < minScore) {
				minScore = score
			}
			if score < minSinceMax {
				minSinceMax = score
				deltaStar = d
			}
		}
	}

	if !confirmed {
		return 0, false
	}

	jStar := n - 1 - deltaStar
	if jStar-1 < 0 || jStar+1 >= n {
		return 0, false
	}
	v := vfit.Offset(float64(diffs[jStar-1]), float64(diffs[jStar]), float64(diffs[jStar+1]))
	p := float64(n-1) - (float64(jStar) + v)

	if p <= 6 {
		return 0, false
	}
	return p, true
}
