// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package main

import (
	"bytes"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"testing"
)

// fixRawVideoFile fixture provides a raw planar YUV 4:2:0 file.
//
// Each frame has a uniform luma plane taken from lumas, chroma planes are
// filled with neutral 128. Uniform planes keep expected metric values
// trivial which is all these CLI level tests need.
func fixRawVideoFile(t *testing.T, width, height int, lumas []byte) string {
	t.Helper()

	var buf bytes.Buffer
	chromaSize := (width / 2) * (height / 2) * 2
	for _, y := range lumas {
		buf.Write(bytes.Repeat([]byte{y}, width*height))
		buf.Write(bytes.Repeat([]byte{128}, chromaSize))
	}

	fPath := path.Join(t.TempDir(), "video.yuv")
	if err := os.WriteFile(fPath, buf.Bytes(), fs.FileMode(0o644)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return fPath
}

// fixRawVideoFileBanded fixture provides a raw planar YUV 4:2:0 file where
// each frame's luma plane splits into a top and a bottom band of different
// values. Banded frames have nonzero and per-frame distinct SI/TI which the
// plotting tests need.
func fixRawVideoFileBanded(t *testing.T, width, height int, bands [][2]byte) string {
	t.Helper()

	var buf bytes.Buffer
	chromaSize := (width / 2) * (height / 2) * 2
	for _, b := range bands {
		buf.Write(bytes.Repeat([]byte{b[0]}, width*height/2))
		buf.Write(bytes.Repeat([]byte{b[1]}, width*height-width*height/2))
		buf.Write(bytes.Repeat([]byte{128}, chromaSize))
	}

	fPath := path.Join(t.TempDir(), "video.yuv")
	if err := os.WriteFile(fPath, buf.Bytes(), fs.FileMode(0o644)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return fPath
}

// fixContainerVideoFile fixture provides a small mp4 test video.
//
// Skips the test when ffmpeg is not available.
func fixContainerVideoFile(t *testing.T) string {
	t.Helper()

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skipf("ffmpeg not available: %s", err)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skipf("ffprobe not available: %s", err)
	}

	fPath := path.Join(t.TempDir(), "video.mp4")
	out, err := exec.Command(ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc2=duration=1:size=64x48:rate=10",
		"-pix_fmt", "yuv420p",
		fPath).CombinedOutput()
	if err != nil {
		t.Fatalf("Unexpected error generating test video: %v\n%s", err, out)
	}
	return fPath
}
