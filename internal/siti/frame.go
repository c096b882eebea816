// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Video frame related abstractions.

package siti

import (
	"fmt"
	"strings"
)

// RangeMode selects how decoded 8-bit luma samples map to computation values.
type RangeMode int

const (
	// RangeFull passes samples through unchanged (0-255).
	RangeFull RangeMode = iota
	// RangeLimited assumes samples lie in [16, 235] and linearly rescales
	// them to [0, 255]. Samples outside that interval are a hard error,
	// silently rescaling under a wrong assumption would corrupt results.
	RangeLimited
)

func (m RangeMode) String() string {
	switch m {
	case RangeFull:
		return "full"
	case RangeLimited:
		return "limited"
	}
	return fmt.Sprintf("RangeMode(%d)", int(m))
}

// ParseRangeMode converts string representation to RangeMode.
func ParseRangeMode(s string) (RangeMode, error) {
	switch strings.ToLower(s) {
	case "full":
		return RangeFull, nil
	case "limited":
		return RangeLimited, nil
	}
	return RangeFull, fmt.Errorf("unknown range mode: %q", s)
}

// Frame is a single decoded luma plane promoted to float64.
//
// Pix is row-major of length Width*Height. Each Frame owns its buffer: a
// source hands ownership over to the consumer and never mutates it
// afterwards.
type Frame struct {
	Pix    []float64
	Width  int
	Height int
}

// Limited range maps nominal black 16 and nominal white 235 onto 0 and 255.
const (
	limitedBlack = 16
	limitedWhite = 235
	limitedScale = 255.0 / float64(limitedWhite-limitedBlack)
)

// frameFromPlane converts one raw 8-bit luma plane into a Frame applying
// range normalization per mode.
func frameFromPlane(plane []byte, width, height int, mode RangeMode) (*Frame, error) {
	if len(plane) != width*height {
		return nil, fmt.Errorf("luma plane size %d does not match %dx%d", len(plane), width, height)
	}

	pix := make([]float64, len(plane))
	switch mode {
	case RangeLimited:
		for i, v := range plane {
			if v < limitedBlack || v > limitedWhite {
				return nil, fmt.Errorf(
					"sample %d at offset %d outside [%d, %d]: %w",
					v, i, limitedBlack, limitedWhite, ErrRangeAssumptionViolated)
			}
			pix[i] = float64(v-limitedBlack) * limitedScale
		}
	default:
		for i, v := range plane {
			pix[i] = float64(v)
		}
	}

	return &Frame{Pix: pix, Width: width, Height: height}, nil
}
