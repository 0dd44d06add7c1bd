//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func probeDurationSeconds(path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// makeThreeShotVideo renders three 2s still test patterns at 25 fps, so cuts
// fall after frames 50 and 100.
func makeThreeShotVideo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	out := filepath.Join(t.TempDir(), "three shots.mp4")
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi", "-i", "smptebars=s=320x240:r=25:d=2",
		"-f", "lavfi", "-i", "rgbtestsrc=s=320x240:r=25:d=2",
		"-f", "lavfi", "-i", "yuvtestsrc=s=320x240:r=25:d=2",
		"-filter_complex", "[0:v][1:v][2:v]concat=n=3:v=1:a=0,format=yuv420p[v]",
		"-map", "[v]",
		"-c:v", "libx264",
		"-r", "25",
		out,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
	return out
}
