// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package siti

import "errors"

// Sentinel errors for structural failures. All of these abort the whole
// calculation: they indicate bad input or configuration, never a transient
// condition, so nothing is retried. Callers get them wrapped with locator
// and dimension context via fmt.Errorf %w.
var (
	// ErrNoVideoStream means given container has no decodable video stream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrMissingDimensions means raw planar input was requested without
	// explicit width and height.
	ErrMissingDimensions = errors.New("missing width/height for raw input")
	// ErrRangeAssumptionViolated means limited range was selected but
	// decoded samples fall outside [16, 235].
	ErrRangeAssumptionViolated = errors.New("limited range assumption violated")
	// ErrUnsupportedFormat means a raw chroma layout other than 4:2:0.
	ErrUnsupportedFormat = errors.New("unsupported raw pixel format")
	// ErrDimensionMismatch means consecutive frames differ in shape.
	ErrDimensionMismatch = errors.New("frame dimension mismatch")
)
