// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package siti

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is an in-memory FrameSource for driver tests.
type stubSource struct {
	frames []*Frame
	pos    int
	closed int
}

func (s *stubSource) Next() (*Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *stubSource) EstimatedFrames() int { return len(s.frames) }

func (s *stubSource) Close() error {
	s.closed++
	return nil
}

func fixStubSource(n int) *stubSource {
	frames := make([]*Frame, n)
	for i := range frames {
		i := i
		frames[i] = fixFrame(16, 12, func(x, y int) float64 {
			return float64((x + i) % 7 * 30)
		})
	}
	return &stubSource{frames: frames}
}

func Test_Calculate(t *testing.T) {
	t.Run("Sequence lengths follow frame count", func(t *testing.T) {
		src := fixStubSource(5)
		res, err := Calculate(src, 0)
		require.NoError(t, err)

		assert.Equal(t, 5, res.FrameCount)
		assert.Len(t, res.SI, 5)
		// First-frame TI is undefined and omitted, not padded with zero.
		assert.Len(t, res.TI, 4)
		assert.Equal(t, 16, res.Width)
		assert.Equal(t, 12, res.Height)
	})

	t.Run("Source is closed on normal exhaustion", func(t *testing.T) {
		src := fixStubSource(3)
		_, err := Calculate(src, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, src.closed)
	})

	t.Run("Frame limit terminates early and closes source", func(t *testing.T) {
		src := fixStubSource(10)
		res, err := Calculate(src, 4)
		require.NoError(t, err)

		assert.Equal(t, 4, res.FrameCount)
		assert.Len(t, res.SI, 4)
		assert.Len(t, res.TI, 3)
		assert.Equal(t, 1, src.closed)
		// No more frames were pulled than requested.
		assert.Equal(t, 4, src.pos)
	})

	t.Run("Limit beyond stream length is not an error", func(t *testing.T) {
		src := fixStubSource(3)
		res, err := Calculate(src, 100)
		require.NoError(t, err)
		assert.Equal(t, 3, res.FrameCount)
	})

	t.Run("Dimension mismatch aborts and closes source", func(t *testing.T) {
		src := fixStubSource(3)
		src.frames[1] = fixFrame(8, 6, func(x, y int) float64 { return 0 })

		_, err := Calculate(src, 0)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Equal(t, 1, src.closed)
	})
}

func Test_Calculate_FromRawFile(t *testing.T) {
	const w, h = 16, 12
	fPath := fixWriteRawYUV(t, w, h, []byte{100, 110, 110, 120}, 0)

	src, err := OpenSource(SourceConfig{Input: fPath, Width: w, Height: h, Range: RangeFull})
	require.NoError(t, err)

	res, err := Calculate(src, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, res.FrameCount)
	require.Len(t, res.SI, 4)
	require.Len(t, res.TI, 3)

	// Constant frames: zero spatial activity.
	for _, si := range res.SI {
		assert.Equal(t, 0.0, si)
	}
	// Uniform luma steps: each difference is constant, so zero dispersion.
	for _, ti := range res.TI {
		assert.InDelta(t, 0.0, ti, 1e-12)
	}
}
