//go:build integration

package itest

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}
	return "", errors.New("could not locate go.mod")
}

func mustRepoRoot(t *testing.T) string {
	t.Helper()

	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	return repoRoot
}

// makeColorFixture renders solid-colour segments of segSec seconds each, so
// every colour switch is a hard scene change. Every frame is a keyframe to
// keep stream-copy cuts exact.
func makeColorFixture(t *testing.T, dir string, segSec int, colors ...string) string {
	t.Helper()
	out := filepath.Join(dir, "fixture.mp4")
	var args []string
	args = append(args, "-y", "-hide_banner", "-loglevel", "error")
	var concat strings.Builder
	for i, c := range colors {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=320x240:r=25:d=%d", c, segSec))
		fmt.Fprintf(&concat, "[%d:v]", i)
	}
	fmt.Fprintf(&concat, "concat=n=%d:v=1:a=0[v]", len(colors))
	args = append(args,
		"-filter_complex", concat.String(),
		"-map", "[v]",
		"-c:v", "libx264",
		"-g", "1",
		"-pix_fmt", "yuv420p",
		out,
	)
	if b, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
	return out
}

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
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
