// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Frame source abstraction: a forward-only stream of decoded luma frames.

package siti

import (
	"path/filepath"
	"strings"
)

// DefaultFfmpegDecodeTemplate is the ffmpeg argument template used to decode
// any container input to a stream of raw 8-bit grayscale frames on stdout.
var DefaultFfmpegDecodeTemplate = "-hide_banner -loglevel error -nostdin " +
	"-i {{.InputFile}} -map 0:v:0 -f rawvideo -pix_fmt gray -"

// SourceConfig carries everything needed to construct a FrameSource.
// Immutable once a source has been opened from it.
type SourceConfig struct {
	// Input file path. Suffix selects the source variant: .yuv/.raw files
	// open as raw planar 4:2:0, anything else goes through ffmpeg.
	Input string
	// Frame dimensions; mandatory for raw planar input, ignored for
	// container input (dimensions come from stream metadata there).
	Width  int
	Height int
	// Luma sample range handling.
	Range RangeMode
	// Raw planar pixel format; empty means yuv420p. Only 4:2:0 8-bit is
	// implemented.
	PixFmt string
	// Paths to ffmpeg and ffprobe executables (container input only);
	// empty means discovery via PATH or env override.
	FfmpegPath  string
	FfprobePath string
	// ffmpeg argument template; empty means DefaultFfmpegDecodeTemplate.
	DecodeTemplate string
}

// FrameSource produces a lazy, finite, forward-only sequence of frames.
//
// Next returns io.EOF on normal exhaustion. Every returned Frame is a
// fresh, independently owned buffer. A source holds its underlying file or
// process handle for its entire lifetime and must be Closed on all paths,
// including early termination; Close is safe to call more than once.
type FrameSource interface {
	Next() (*Frame, error)
	// EstimatedFrames reports frame count known ahead of iteration; 0
	// means unknown. Advisory only, never load-bearing for correctness.
	EstimatedFrames() int
	Close() error
}

// rawSuffixes are input file suffixes treated as headerless raw planar video.
var rawSuffixes = map[string]bool{
	".yuv": true,
	".raw": true,
}

// IsRawInput reports if given input path denotes a headerless raw planar
// file, judged by file suffix.
func IsRawInput(input string) bool {
	return rawSuffixes[strings.ToLower(filepath.Ext(input))]
}

// OpenSource constructs a FrameSource for given config, dispatching on the
// input file suffix at construction time.
func OpenSource(cfg SourceConfig) (FrameSource, error) {
	if IsRawInput(cfg.Input) {
		return openRawSource(cfg)
	}
	return openContainerSource(cfg)
}
