// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Summary statistics over collected metric sequences.

package siti

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric holds aggregate statistics for one metric sequence.
type Metric struct {
	Mean  float64
	Min   float64
	Max   float64
	// Population standard deviation (divisor N).
	StDev float64
}

// Summary bundles aggregate SI and TI statistics of one calculation.
type Summary struct {
	SI         Metric
	TI         Metric
	FrameCount int
}

// Aggregate derives summary statistics from a full value sequence. Zero
// Metric for an empty sequence.
func Aggregate(values []float64) Metric {
	if len(values) == 0 {
		return Metric{}
	}
	return Metric{
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		StDev: stat.PopStdDev(values, nil),
	}
}

// Summarize derives aggregate statistics from the retained sequences.
func (r Result) Summarize() Summary {
	return Summary{
		SI:         Aggregate(r.SI),
		TI:         Aggregate(r.TI),
		FrameCount: r.FrameCount,
	}
}
