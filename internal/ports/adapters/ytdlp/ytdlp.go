package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

type Timeouts struct {
	Metadata time.Duration
	Download time.Duration
	Captions time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Metadata: time.Minute,
		Download: 30 * time.Minute,
		Captions: 2 * time.Minute,
	}
}

// Adapter drives the yt-dlp binary. It serves as both the VideoSource and the
// auto-caption TranscriptFetcher.
type Adapter struct {
	bin      string
	timeouts Timeouts
	logger   zerolog.Logger
}

func New(logger zerolog.Logger, binPath string, timeouts Timeouts) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{
		bin:      binPath,
		timeouts: timeouts,
		logger:   logger.With().Str("component", "yt-dlp").Logger(),
	}
}

func (a *Adapter) FetchMetadata(ctx context.Context, locator string) (types.VideoMetadata, error) {
	ctx, cancel := withTimeout(ctx, a.timeouts.Metadata)
	defer cancel()

	args := []string{"-J", "--skip-download", "--no-warnings", "--no-playlist", locator}
	a.logger.Debug().Strs("args", args).Msg("fetch metadata")
	stdout, stderr, err := a.run(ctx, args)
	if err != nil {
		return types.VideoMetadata{}, toolError(ctx, "yt-dlp metadata", err, stderr)
	}
	return parseMetadata(stdout)
}

func (a *Adapter) DownloadRange(ctx context.Context, locator, quality string, start, end float64, outDir string) (string, error) {
	sel, err := formatSelector(quality)
	if err != nil {
		return "", err
	}
	ctx, cancel := withTimeout(ctx, a.timeouts.Download)
	defer cancel()

	args := downloadArgs(locator, sel, start, end, outDir)
	a.logger.Debug().Strs("args", args).Msg("download")
	stdout, stderr, err := a.run(ctx, args)
	if err != nil {
		return "", toolError(ctx, "yt-dlp download", err, stderr)
	}
	if p := lastLine(stdout); p != "" {
		return p, nil
	}
	// Older builds print nothing for after_move; fall back to the output template.
	matches, _ := filepath.Glob(filepath.Join(outDir, "source.*"))
	if len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp download: no output file in %s", outDir)
	}
	return matches[0], nil
}

// FetchTranscript pulls auto or uploaded English captions and renders them as
// bracketed "[HH:MM:SS] text" lines. No captions yields "" and a nil error.
func (a *Adapter) FetchTranscript(ctx context.Context, locator string) (string, error) {
	ctx, cancel := withTimeout(ctx, a.timeouts.Captions)
	defer cancel()

	dir, err := os.MkdirTemp("", "vodclip-captions-")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Warn().Err(err).Str("path", dir).Msg("remove captions dir")
		}
	}()

	args := []string{
		"--skip-download",
		"--no-playlist",
		"--write-auto-subs", "--write-subs",
		"--sub-langs", "en.*,en",
		"--sub-format", "vtt",
		"-o", filepath.Join(dir, "captions.%(ext)s"),
		locator,
	}
	a.logger.Debug().Strs("args", args).Msg("fetch captions")
	_, stderr, err := a.run(ctx, args)
	if err != nil {
		return "", toolError(ctx, "yt-dlp captions", err, stderr)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if len(files) == 0 {
		return "", nil
	}
	sort.Strings(files)
	b, err := os.ReadFile(files[0])
	if err != nil {
		return "", err
	}
	return VTTToBracketed(string(b)), nil
}

func (a *Adapter) run(ctx context.Context, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func formatSelector(quality string) (string, error) {
	switch quality {
	case "", "best":
		return "bv*+ba/b", nil
	case "1080", "720", "480", "360":
		return fmt.Sprintf("bv*[height<=%[1]s]+ba/b[height<=%[1]s]", quality), nil
	}
	return "", fmt.Errorf("unsupported download quality %q", quality)
}

func downloadArgs(locator, selector string, start, end float64, outDir string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"-f", selector,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(outDir, "source.%(ext)s"),
		"--print", "after_move:filepath",
		"--no-simulate",
	}
	if end > 0 {
		args = append(args, "--download-sections", fmt.Sprintf("*%s-%s", timecode.Seconds(start), timecode.Seconds(end)))
	}
	return append(args, locator)
}

type rawMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
	Chapters []struct {
		Title     string  `json:"title"`
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
	} `json:"chapters"`
}

func parseMetadata(b []byte) (types.VideoMetadata, error) {
	var raw rawMetadata
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.VideoMetadata{}, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}
	if raw.ID == "" {
		return types.VideoMetadata{}, errors.New("yt-dlp metadata: missing video id")
	}
	md := types.VideoMetadata{
		ID:              raw.ID,
		Title:           raw.Title,
		Channel:         raw.Channel,
		DurationSeconds: raw.Duration,
	}
	if md.Channel == "" {
		md.Channel = raw.Uploader
	}
	for _, c := range raw.Chapters {
		md.Chapters = append(md.Chapters, types.Chapter{Title: c.Title, StartTime: c.StartTime, EndTime: c.EndTime})
	}
	return md, nil
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
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
	if len(out) > 2000 {
		out = out[len(out)-2000:]
	}
	return fmt.Errorf("%s: %w\n%s", what, err, string(out))
}
