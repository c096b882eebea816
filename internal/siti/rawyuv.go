// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Raw planar frame source: headerless 8-bit 4:2:0 YUV files.

package siti

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/evolution-gaming/siti/internal/logging"
)

type rawSource struct {
	input  string
	width  int
	height int
	rng    RangeMode

	frames  int
	emitted int
	file    *os.File
	r       *bufio.Reader
	closed  bool
}

// openRawSource opens a headerless 4:2:0 8-bit planar file. Width and
// height are mandatory, there is no in-band dimension metadata to fall
// back on.
func openRawSource(cfg SourceConfig) (*rawSource, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Input, ErrMissingDimensions)
	}
	if cfg.PixFmt != "" && cfg.PixFmt != "yuv420p" {
		return nil, fmt.Errorf("%s: %q: %w", cfg.Input, cfg.PixFmt, ErrUnsupportedFormat)
	}

	fi, err := os.Stat(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("raw input: %w", err)
	}

	// Floor division: a trailing partial frame is silently dropped.
	frames := int(fi.Size() / int64(rawFrameSize(cfg.Width, cfg.Height)))

	logging.Warnf("Raw file analysis of %s may diverge numerically from "+
		"container-based analysis of equivalent encoded content: decoder "+
		"grayscale conversion and the raw luma-only path are not bit-identical",
		cfg.Input)

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("raw input: %w", err)
	}

	return &rawSource{
		input:  cfg.Input,
		width:  cfg.Width,
		height: cfg.Height,
		rng:    cfg.Range,
		frames: frames,
		file:   f,
		r:      bufio.NewReaderSize(f, 1<<16),
	}, nil
}

// rawFrameSize is byte size of one 4:2:0 8-bit frame: full-res luma plane
// plus two half-by-half chroma planes.
func rawFrameSize(width, height int) int {
	return width*height + (width/2)*(height/2)*2
}

func (s *rawSource) Next() (*Frame, error) {
	if s.closed {
		return nil, errors.New("Next() on closed source")
	}
	if s.emitted >= s.frames {
		return nil, io.EOF
	}

	plane := make([]byte, s.width*s.height)
	if _, err := io.ReadFull(s.r, plane); err != nil {
		return nil, fmt.Errorf("reading luma plane %d from %s: %w", s.emitted, s.input, err)
	}
	// Chroma is not used for SI/TI, skip it without decoding.
	if _, err := s.r.Discard((s.width / 2) * (s.height / 2) * 2); err != nil {
		return nil, fmt.Errorf("skipping chroma planes %d from %s: %w", s.emitted, s.input, err)
	}
	s.emitted++

	f, err := frameFromPlane(plane, s.width, s.height, s.rng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.input, err)
	}
	return f, nil
}

func (s *rawSource) EstimatedFrames() int {
	return s.frames
}

func (s *rawSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
