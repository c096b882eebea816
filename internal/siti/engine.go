// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// SI/TI metric engine per ITU-T Rec. P.910.
//
// SI is the population standard deviation of the Sobel gradient magnitude
// of a frame. TI is the population standard deviation of the pixel-wise
// difference between two consecutive frames.

package siti

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// EngineOpts exposes metric computation knobs.
type EngineOpts struct {
	// CropBorder excludes a 1-pixel border of the gradient magnitude map
	// from the SI standard deviation. Enabled by default: border values
	// are filter edge artifacts. Disable only to match a reference
	// dataset that was produced with the full-map convention.
	CropBorder bool
}

// DefaultEngineOpts is the preferred metric convention.
var DefaultEngineOpts = EngineOpts{CropBorder: true}

// Sample carries metric values for one frame.
//
// HasTI is false exactly for the first frame of a stream, where TI is
// undefined rather than zero.
type Sample struct {
	SI    float64
	TI    float64
	HasTI bool
}

// Engine computes per-frame SI/TI, retaining the previous frame between
// calls. Not safe for concurrent use; the whole pipeline is strictly
// sequential anyway.
type Engine struct {
	opts EngineOpts
	prev *Frame
}

// NewEngine creates an Engine with DefaultEngineOpts.
func NewEngine() *Engine {
	return NewEngineOpts(DefaultEngineOpts)
}

// NewEngineOpts creates an Engine with explicit options.
func NewEngineOpts(opts EngineOpts) *Engine {
	return &Engine{opts: opts}
}

// Process computes SI and TI for given frame and takes ownership of it as
// the new previous frame.
func (e *Engine) Process(f *Frame) (Sample, error) {
	s := Sample{SI: SI(f, e.opts)}

	if e.prev != nil {
		ti, err := TI(f, e.prev)
		if err != nil {
			return s, err
		}
		s.TI = ti
		s.HasTI = true
	}
	e.prev = f

	return s, nil
}

// SI calculates Spatial Information of a frame.
func SI(f *Frame, opts EngineOpts) float64 {
	mag := sobelMagnitude(f, opts.CropBorder)
	return stat.PopStdDev(mag, nil)
}

// TI calculates Temporal Information between two frames of equal shape.
func TI(f, prev *Frame) (float64, error) {
	if f.Width != prev.Width || f.Height != prev.Height {
		return 0, fmt.Errorf("%dx%d vs previous %dx%d: %w",
			f.Width, f.Height, prev.Width, prev.Height, ErrDimensionMismatch)
	}

	diff := make([]float64, len(f.Pix))
	for i := range f.Pix {
		diff[i] = f.Pix[i] - prev.Pix[i]
	}
	return stat.PopStdDev(diff, nil), nil
}

// sobelMagnitude applies horizontal and vertical Sobel operators and
// returns the per-pixel Euclidean gradient magnitude as a flat slice.
//
// With crop the 1-pixel border is excluded, so only interior pixels with a
// full 3x3 neighborhood contribute. Without crop, edges are handled by
// reflecting the edge sample outwards (value at -1 is the value at 0),
// mirroring the convention of common reference implementations.
func sobelMagnitude(f *Frame, crop bool) []float64 {
	w, h := f.Width, f.Height

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return f.Pix[y*w+x]
	}

	x0, y0, x1, y1 := 0, 0, w, h
	if crop {
		x0, y0, x1, y1 = 1, 1, w-1, h-1
		if x1 <= x0 || y1 <= y0 {
			return nil
		}
	}

	mag := make([]float64, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			dy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag = append(mag, math.Hypot(dx, dy))
		}
	}
	return mag
}
