// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Container frame source: decoding is delegated to ffmpeg which pipes raw
// 8-bit grayscale frames to us over stdout.

package siti

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"text/template"

	"github.com/evolution-gaming/siti/internal/logging"
	"github.com/evolution-gaming/siti/internal/lw"
	"github.com/evolution-gaming/siti/internal/tools"
	"github.com/google/shlex"
)

// Limit for captured ffmpeg stderr, protects from some runaway process
// flooding output.
const stderrBufferSize = 1 * 1024 * 1024

type containerSource struct {
	input     string
	width     int
	height    int
	rng       RangeMode
	estimated int

	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	stderrW *lw.LimitedWriter
	waited  bool
	closed  bool
}

// openContainerSource probes input metadata via ffprobe and starts an
// ffmpeg decode process per config's DecodeTemplate.
func openContainerSource(cfg SourceConfig) (*containerSource, error) {
	ffprobePath := cfg.FfprobePath
	if ffprobePath == "" {
		var err error
		if ffprobePath, err = tools.FfprobePath(); err != nil {
			return nil, err
		}
	}
	meta, err := tools.FfprobeExtractMetadataPath(ffprobePath, cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", cfg.Input, err)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Input, ErrNoVideoStream)
	}
	if meta.FrameCount == 0 {
		logging.Warnf("Unknown frame count for %s, will count as we go", cfg.Input)
	}

	ffmpegPath := cfg.FfmpegPath
	if ffmpegPath == "" {
		if ffmpegPath, err = tools.FfmpegPath(); err != nil {
			return nil, err
		}
	}

	tplStr := cfg.DecodeTemplate
	if tplStr == "" {
		tplStr = DefaultFfmpegDecodeTemplate
	}
	// Template requires a struct with exported fields.
	tplContext := struct {
		InputFile string
	}{
		InputFile: cfg.Input,
	}
	var cmdLine strings.Builder
	tpl, err := template.New("ffmpeg").Parse(tplStr)
	if err != nil {
		return nil, fmt.Errorf("parse decode template: %w", err)
	}
	if err := tpl.Execute(&cmdLine, tplContext); err != nil {
		return nil, fmt.Errorf("execute decode template: %w", err)
	}
	ffmpegArgs, err := shlex.Split(cmdLine.String())
	if err != nil {
		return nil, fmt.Errorf("prepare decode command: %w", err)
	}

	s := &containerSource{
		input:     cfg.Input,
		width:     meta.Width,
		height:    meta.Height,
		rng:       cfg.Range,
		estimated: meta.FrameCount,
	}

	s.cmd = exec.Command(ffmpegPath, ffmpegArgs...) //#nosec G204
	s.stderrW = lw.LimitWriter(&s.stderr, stderrBufferSize)
	s.cmd.Stderr = s.stderrW
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decode stdout pipe: %w", err)
	}
	s.stdout = stdout

	logging.Debugf("Decode command: %v", s.cmd.Args)
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting decoder for %s: %w", cfg.Input, err)
	}

	return s, nil
}

func (s *containerSource) Next() (*Frame, error) {
	if s.closed {
		return nil, errors.New("Next() on closed source")
	}

	plane := make([]byte, s.width*s.height)
	_, err := io.ReadFull(s.stdout, plane)
	switch {
	case err == io.EOF:
		// Decoder exhausted; collect process exit status.
		if werr := s.wait(); werr != nil {
			return nil, fmt.Errorf("decoder for %s: %w\n%s", s.input, werr, s.decoderStderr())
		}
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("truncated frame from decoder for %s (want %dx%d)\n%s",
			s.input, s.width, s.height, s.decoderStderr())
	case err != nil:
		return nil, fmt.Errorf("reading decoded frame from %s: %w", s.input, err)
	}

	f, err := frameFromPlane(plane, s.width, s.height, s.rng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.input, err)
	}
	return f, nil
}

func (s *containerSource) EstimatedFrames() int {
	return s.estimated
}

// Close releases the decode process and its pipe. Safe to call multiple
// times; on early termination the decoder is killed rather than drained.
func (s *containerSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stdout.Close()
	if !s.waited {
		// Process may still be running (early termination path).
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
		s.waited = true
	}
	return nil
}

// decoderStderr returns the captured decoder stderr for error reporting,
// noting when the capture hit its cap.
func (s *containerSource) decoderStderr() string {
	out := s.stderr.String()
	if n := s.stderrW.Truncated(); n > 0 {
		out += fmt.Sprintf("... (%d bytes of decoder output dropped)", n)
	}
	return out
}

// wait reaps the decoder process once stdout is exhausted.
func (s *containerSource) wait() error {
	if s.waited {
		return nil
	}
	s.waited = true
	return s.cmd.Wait()
}
