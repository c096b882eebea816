// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// The streaming driver: pull frames, feed the engine, collect sequences.

package siti

import (
	"errors"
	"fmt"
	"io"

	"github.com/evolution-gaming/siti/internal/logging"
)

// Result holds ordered per-frame metric sequences of one calculation.
//
// TI has one value per frame transition, i.e. len(TI) == FrameCount-1:
// the undefined first-frame TI is omitted, not padded with a zero. Any
// display-only padding is the consumer's business.
type Result struct {
	SI         []float64
	TI         []float64
	FrameCount int

	// Width and Height record the frame dimensions observed on the first
	// decoded frame. Zero when no frame was processed.
	Width  int
	Height int
}

// Calculate runs the whole SI/TI computation over src with default engine
// options.
func Calculate(src FrameSource, limit int) (Result, error) {
	return CalculateWith(NewEngine(), src, limit)
}

// CalculateWith pulls frames from src one at a time, feeding each to eng,
// until src is exhausted or limit frames have been processed. A limit of 0
// means no limit; a limit below 2 is a caller-boundary precondition and is
// not checked here.
//
// The source is closed on all return paths, including errors.
func CalculateWith(eng *Engine, src FrameSource, limit int) (res Result, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing frame source: %w", cerr)
		}
	}()

	if est := src.EstimatedFrames(); est > 0 {
		logging.Debugf("Estimated frame count: %d", est)
	}

	for limit == 0 || res.FrameCount < limit {
		var f *Frame
		f, err = src.Next()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			return res, err
		}

		var s Sample
		if s, err = eng.Process(f); err != nil {
			return res, err
		}
		if res.FrameCount == 0 {
			res.Width, res.Height = f.Width, f.Height
		}
		res.SI = append(res.SI, s.SI)
		if s.HasTI {
			res.TI = append(res.TI, s.TI)
		}
		res.FrameCount++
	}

	return res, nil
}
