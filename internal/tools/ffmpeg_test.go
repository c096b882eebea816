// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tools

import (
	"os"
	"os/exec"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FindTool(t *testing.T) {
	// Create a fake binary.
	fakeBinDir := t.TempDir()
	exePath := path.Join(fakeBinDir, "sh")
	f, err := os.OpenFile(exePath, os.O_CREATE, 0o755)
	require.NoError(t, err)
	f.Close()

	t.Run("Should fail if executable not found in $PATH nor overridden", func(t *testing.T) {
		got, err := FindTool("nonexistent", "")
		assert.Equal(t, "", got)
		assert.Error(t, err)
	})

	t.Run("Should return path if overridden via env var", func(t *testing.T) {
		t.Setenv("CUSTOM_EXE_PATH", exePath)

		got, err := FindTool("sh", "CUSTOM_EXE_PATH")
		require.NoError(t, err)
		assert.Equal(t, exePath, got)
	})

	t.Run("Should return path from $PATH", func(t *testing.T) {
		sysPath := os.Getenv("PATH")
		t.Setenv("PATH", fakeBinDir+":"+sysPath)

		got, err := FindTool("sh", "")
		require.NoError(t, err)
		assert.Equal(t, exePath, got)
	})
}

func Test_Path(t *testing.T) {
	type testCase struct {
		pathFunc func() (string, error)
		exeName  string
	}

	tests := map[string]testCase{
		"FfprobePath()": {
			pathFunc: FfprobePath,
			exeName:  "ffprobe",
		},
		"FfmpegPath()": {
			pathFunc: FfmpegPath,
			exeName:  "ffmpeg",
		},
	}

	run := func(t *testing.T, tc testCase) {
		// Create a fake binary and put it on PATH
		fakeBinDir := t.TempDir()
		wantPath := path.Join(fakeBinDir, tc.exeName)
		f, err := os.OpenFile(wantPath, os.O_CREATE, 0o755)
		require.NoError(t, err)
		f.Close()
		sysPath := os.Getenv("PATH")
		t.Setenv("PATH", fakeBinDir+":"+sysPath)

		gotPath, err := tc.pathFunc()
		assert.NoError(t, err)

		assert.Equal(t, wantPath, gotPath)
		assert.FileExists(t, gotPath)
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_Path_Negative(t *testing.T) {
	type testCase struct {
		pathFunc func() (string, error)
	}

	tests := map[string]testCase{
		"FfprobePath()": {
			pathFunc: FfprobePath,
		},
		"FfmpegPath()": {
			pathFunc: FfmpegPath,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// Wipe PATH and overrides so that no binary can be located.
			t.Setenv("PATH", "")
			t.Setenv(ffmpegEnvOverride, "")
			t.Setenv(ffprobeEnvOverride, "")

			s, err := tc.pathFunc()
			assert.Error(t, err, "Expected error since binary is not on PATH")
			assert.Equal(t, "", s, "Expected empty string as path")
		})
	}
}

// fixGenerateTestVideo renders a short test clip via ffmpeg's testsrc2 and
// returns its path. Skips the test when ffmpeg is not available.
func fixGenerateTestVideo(t *testing.T) string {
	ffmpeg, err := FfmpegPath()
	if err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}

	out := path.Join(t.TempDir(), "testsrc.mp4")
	cmd := exec.Command(ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc2=duration=1:size=64x48:rate=10",
		"-pix_fmt", "yuv420p",
		out)
	require.NoError(t, cmd.Run(), "generating test video")

	return out
}

func Test_FfprobeExtractMetadata(t *testing.T) {
	if _, err := FfprobePath(); err != nil {
		t.Skipf("ffprobe not available: %v", err)
	}
	videoFile := fixGenerateTestVideo(t)

	t.Run("Should extract VideoMetadata from video file", func(t *testing.T) {
		got, err := FfprobeExtractMetadata(videoFile)
		require.NoError(t, err)

		assert.Equal(t, 64, got.Width)
		assert.Equal(t, 48, got.Height)
		assert.Equal(t, 10, got.FrameCount)
		assert.Equal(t, "yuv420p", got.PixFmt)
		assert.NotEmpty(t, got.CodecName)
	})

	t.Run("Should report video stream present", func(t *testing.T) {
		ok, err := HasVideoStream(videoFile)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func Test_FfprobeExtractMetadata_Negative(t *testing.T) {
	if _, err := FfprobePath(); err != nil {
		t.Skipf("ffprobe not available: %v", err)
	}

	t.Run("Should fail for non-existent media file", func(t *testing.T) {
		_, err := FfprobeExtractMetadata("/non/existent/path/to/file")
		assert.Error(t, err)
	})
	t.Run("Should fail extracting metadata from non-media file", func(t *testing.T) {
		// Try to extract metadata from non video file, just some binary like for instance
		// a test binary.
		nonMediaFile := os.Args[0]
		_, err := FfprobeExtractMetadata(nonMediaFile)
		assert.Error(t, err)
	})
}
