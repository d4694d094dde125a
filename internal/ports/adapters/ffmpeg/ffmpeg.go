package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

type Timeouts struct {
	Trim        time.Duration
	SceneDetect time.Duration
	Audio       time.Duration
	Probe       time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Trim:        2 * time.Minute,
		SceneDetect: 20 * time.Minute,
		Audio:       10 * time.Minute,
		Probe:       30 * time.Second,
	}
}

type Adapter struct {
	ffmpeg   string
	ffprobe  string
	timeouts Timeouts
	logger   zerolog.Logger
}

func New(logger zerolog.Logger, ffmpegPath, ffprobePath string, timeouts Timeouts) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{
		ffmpeg:   ffmpegPath,
		ffprobe:  ffprobePath,
		timeouts: timeouts,
		logger:   logger.With().Str("component", "ffmpeg").Logger(),
	}
}

func (a *Adapter) TrimStreamCopy(ctx context.Context, inPath string, start, duration float64, outPath string) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("%w: trim duration must be > 0", types.ErrInvalidRange)
	}
	ctx, cancel := withTimeout(ctx, a.timeouts.Trim)
	defer cancel()

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", timecode.Seconds(start),
		"-i", inPath,
		"-t", timecode.Seconds(duration),
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		outPath,
	}
	a.logger.Debug().Strs("args", args).Msg("trim stream copy")
	b, err := exec.CommandContext(ctx, a.ffmpeg, args...).CombinedOutput()
	if err != nil {
		return "", toolError(ctx, "ffmpeg trim", err, b)
	}
	return outPath, nil
}

// DetectScenes runs the scene-change filter and returns change timestamps in seconds.
// ffmpeg may exit non-zero after printing usable showinfo lines; those are kept.
func (a *Adapter) DetectScenes(ctx context.Context, inPath string, threshold float64) ([]float64, error) {
	ctx, cancel := withTimeout(ctx, a.timeouts.SceneDetect)
	defer cancel()

	args := []string{
		"-hide_banner", "-nostats",
		"-i", inPath,
		"-an",
		"-vf", fmt.Sprintf("select='gt(scene,%s)',showinfo", strconv.FormatFloat(threshold, 'f', -1, 64)),
		"-f", "null", "-",
	}
	a.logger.Debug().Strs("args", args).Msg("scene detection")
	b, err := exec.CommandContext(ctx, a.ffmpeg, args...).CombinedOutput()
	scenes := ParseSceneOutput(string(b))
	if err != nil {
		if len(scenes) > 0 && ctx.Err() == nil {
			a.logger.Warn().Err(err).Int("scenes", len(scenes)).Msg("ffmpeg exited non-zero, using partial scene output")
			return scenes, nil
		}
		return nil, types.NewStageError(types.StageSceneDetect, toolError(ctx, "ffmpeg scene detect", err, b))
	}
	return scenes, nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inPath, outWav string) error {
	ctx, cancel := withTimeout(ctx, a.timeouts.Audio)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return toolError(ctx, "ffmpeg extract audio", err, b)
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inPath string) (float64, error) {
	ctx, cancel := withTimeout(ctx, a.timeouts.Probe)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, toolError(ctx, "ffprobe duration", err, b)
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func toolError(ctx context.Context, what string, err error, out []byte) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out: %w", what, ctx.Err())
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s: %w: %v", what, types.ErrToolUnavailable, err)
	}
	return fmt.Errorf("%s: %w\n%s", what, err, tail(out, 2000))
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
