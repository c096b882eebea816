// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Ffmpeg family related tools.
package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"

	"github.com/evolution-gaming/siti/internal/logging"
	"github.com/evolution-gaming/siti/internal/video"
)

var (
	ffprobeCmd = "ffprobe"
	ffmpegCmd  = "ffmpeg"
	// Environment variables which take precedence over $PATH lookup.
	ffprobeEnvOverride = "SITI_FFPROBE_PATH"
	ffmpegEnvOverride  = "SITI_FFMPEG_PATH"
)

// FindTool will find tool executable in $PATH with possibility to override it
// via environment variable.
func FindTool(exeName, overrideEnvVar string) (string, error) {
	// First check for executable in case it's overridden via env variable.
	if p := os.Getenv(overrideEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	// Look for executable in $PATH.
	if p, err := exec.LookPath(exeName); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("binary (%s) not found", exeName)
}

// FfmpegPath will return path to ffmpeg binary and error if path is not found.
func FfmpegPath() (string, error) {
	p, err := FindTool(ffmpegCmd, ffmpegEnvOverride)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found: %w", err)
	}
	return p, nil
}

// FfprobePath will return path to ffprobe binary and error if path is not found.
func FfprobePath() (string, error) {
	p, err := FindTool(ffprobeCmd, ffprobeEnvOverride)
	if err != nil {
		return "", fmt.Errorf("ffprobe not found: %w", err)
	}
	return p, nil
}

// FfprobeExtractMetadata will query video file metadata via ffprobe.
//
// Frame count comes from container-reported nb_frames and can legitimately
// be 0 meaning "unknown": no -count_frames here on purpose, since counting
// by decoding would cost a full extra pass over the input.
func FfprobeExtractMetadata(videoFile string) (video.Metadata, error) {
	ffprobePath, err := FfprobePath()
	if err != nil {
		return video.Metadata{}, err
	}
	return FfprobeExtractMetadataPath(ffprobePath, videoFile)
}

// FfprobeExtractMetadataPath is FfprobeExtractMetadata with an explicit
// ffprobe binary instead of discovery.
func FfprobeExtractMetadataPath(ffprobePath, videoFile string) (video.Metadata, error) {
	var vmeta video.Metadata

	if _, err := os.Stat(videoFile); os.IsNotExist(err) {
		return vmeta, fmt.Errorf("FfprobeExtractMetadata() os.Stat: %w", err)
	}

	ffprobeArgs := []string{
		"-v", "quiet",
		"-select_streams", "v",
		"-of", "json",
		"-show_format",
		"-show_streams",
		videoFile,
	}
	cmd := exec.Command(ffprobePath, ffprobeArgs...)
	logging.Debugf("Running: %s\n", cmd)
	out, err := cmd.Output()
	if err != nil {
		return vmeta, fmt.Errorf("FfprobeExtractMetadata() exec error: %w", err)
	}

	// A temporary structure to unmarshal JSON from ffprobe output.
	type metadata struct {
		CodecName  string  `json:"codec_name,omitempty"`
		PixFmt     string  `json:"pix_fmt,omitempty"`
		FrameRate  string  `json:"r_frame_rate,omitempty"`
		Duration   float64 `json:"duration,omitempty,string"`
		Width      int     `json:"width,omitempty"`
		Height     int     `json:"height,omitempty"`
		FrameCount int     `json:"nb_frames,omitempty,string"`
	}
	// Unmarshal metadata from both "streams" and "format" JSON objects.
	meta := &struct {
		Streams []metadata
		Format  metadata
	}{}
	if err := json.Unmarshal(out, &meta); err != nil {
		return vmeta, fmt.Errorf("FfprobeExtractMetadata() json.Unmarshal: %w", err)
	}

	// No video streams at all is a legitimate outcome here, it is for the
	// caller to decide if that is an error.
	if len(meta.Streams) == 0 {
		return vmeta, nil
	}

	vmeta = video.Metadata(meta.Streams[0])
	// For mkv container Streams does not contain duration, so we have to look into Format.
	vmeta.Duration = math.Max(vmeta.Duration, meta.Format.Duration)
	logging.Debugf("%s %+v", videoFile, vmeta)

	return vmeta, nil
}

// HasVideoStream reports if given media file contains at least one video stream.
func HasVideoStream(videoFile string) (bool, error) {
	meta, err := FfprobeExtractMetadata(videoFile)
	if err != nil {
		return false, err
	}
	return meta.CodecName != "" || (meta.Width > 0 && meta.Height > 0), nil
}
