// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// A naìve LimitedWriter implementation.
//
// A symmetrical implementation to io.LimitedReader. Used to put a hard cap
// on captured subprocess output (e.g. decoder stderr). Unlike a failing
// writer it keeps accepting data past the cap and silently discards it, so
// the producing side never sees a broken pipe. The amount of discarded data
// is available via Truncated().
package lw

import "io"

type LimitedWriter struct {
	// Apply limits to this Writer
	w io.Writer
	// Remaining writable bytes
	n uint
	// Bytes accepted but discarded after the cap was reached
	truncated uint64
}

// Write implements io.Writer for *LimitedWriter. The portion of b that fits
// in the remaining limit is passed through, the rest is discarded while
// still reporting full success to the caller.
func (s *LimitedWriter) Write(b []byte) (int, error) {
	keep := uint(len(b))
	if keep > s.n {
		keep = s.n
	}
	if keep > 0 {
		n, err := s.w.Write(b[:keep])
		s.n -= uint(n)
		if err != nil {
			return n, err
		}
	}
	s.truncated += uint64(len(b)) - uint64(keep)
	return len(b), nil
}

// Truncated returns the number of bytes discarded so far.
func (s *LimitedWriter) Truncated() uint64 {
	return s.truncated
}

func LimitWriter(w io.Writer, n uint) *LimitedWriter {
	return &LimitedWriter{w: w, n: n}
}
