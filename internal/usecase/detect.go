package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/forPelevin/vodclip/internal/domain/fusion"
	"github.com/forPelevin/vodclip/internal/types"
)

// preferredBoost multiplies the score of highlights whose type the caller prefers.
const preferredBoost = 1.5

// motionQuality maps analysis quality to the download height used for scene detection.
var motionQuality = map[string]string{
	"":                    "480",
	types.QualityFast:     "360",
	types.QualityStandard: "480",
	types.QualityThorough: "720",
}

func (u Usecase) DetectHighlights(ctx context.Context, locator string, opts types.DetectOptions) (types.DetectHighlightsResult, error) {
	started := u.d.Now()
	if err := u.validate.Struct(opts); err != nil {
		return types.DetectHighlightsResult{}, types.NewStageError(types.StageValidate, fmt.Errorf("detect options: %s", formatValidation(err)))
	}

	md, err := u.d.Source.FetchMetadata(ctx, locator)
	if err != nil {
		return types.DetectHighlightsResult{}, types.NewStageError(types.StageMetadata, err)
	}
	log := u.d.Logger.With().Str("video", md.ID).Logger()
	log.Info().Str("title", md.Title).Float64("duration", md.DurationSeconds).Msg("detecting highlights")

	transcriptMoments := u.d.Transcript.Analyze(ctx, locator)

	var motionMoments []types.ScoredMoment
	motionSkipped := opts.SkipMotionAnalysis || u.d.Motion == nil
	if !motionSkipped {
		motionMoments, err = u.analyzeMotion(ctx, locator, md, opts.AnalysisQuality)
		if err != nil {
			log.Warn().Err(err).Msg("motion analysis unavailable, continuing transcript-only")
			motionSkipped = true
		}
	}
	if err := ctx.Err(); err != nil {
		return types.DetectHighlightsResult{}, err
	}

	hs := fusion.Fuse(transcriptMoments, motionMoments, nil, u.d.Fusion)
	hs = clampToDuration(hs, md.DurationSeconds)
	hs = Select(hs, opts)

	res := types.DetectHighlightsResult{
		Highlights: hs,
		Metadata: types.DetectionMetadata{
			VideoID:             md.ID,
			Title:               md.Title,
			DurationSeconds:     md.DurationSeconds,
			Requested:           opts.MaxClips,
			Found:               len(hs),
			TranscriptAvailable: len(transcriptMoments) > 0,
			TranscriptMoments:   len(transcriptMoments),
			MotionMoments:       len(motionMoments),
			MotionSkipped:       motionSkipped,
			Elapsed:             u.d.Now().Sub(started),
		},
	}
	log.Info().
		Int("found", res.Metadata.Found).
		Int("requested", res.Metadata.Requested).
		Bool("motion_skipped", motionSkipped).
		Msg("detection complete")
	return res, nil
}

// QuickDetect is DetectHighlights without motion analysis.
func (u Usecase) QuickDetect(ctx context.Context, locator string, opts types.DetectOptions) (types.DetectHighlightsResult, error) {
	opts.SkipMotionAnalysis = true
	return u.DetectHighlights(ctx, locator, opts)
}

// analyzeMotion downloads the video into a run directory that is removed on
// every return path.
func (u Usecase) analyzeMotion(ctx context.Context, locator string, md types.VideoMetadata, quality string) ([]types.ScoredMoment, error) {
	dir, err := newRunDir(u.d.WorkDir, "motion-"+md.ID, u.d.Now())
	if err != nil {
		return nil, err
	}
	defer removeRunDir(u.d.Logger, dir)

	path, err := u.d.Source.DownloadRange(ctx, locator, motionQuality[quality], 0, 0, dir)
	if err != nil {
		return nil, types.NewStageError(types.StageDownload, err)
	}
	return u.d.Motion.Analyze(ctx, path), nil
}

// Select applies the caller's filters to ranked highlights: minimum score,
// preferred-type boost with re-ranking, then the clip limit. The boost only
// changes ranking; Confidence keeps the value fusion computed.
func Select(hs []types.DetectedHighlight, opts types.DetectOptions) []types.DetectedHighlight {
	preferred := make(map[types.ClipType]struct{}, len(opts.PreferredTypes))
	for _, t := range opts.PreferredTypes {
		preferred[t] = struct{}{}
	}

	out := make([]types.DetectedHighlight, 0, len(hs))
	for _, h := range hs {
		if h.TotalScore < opts.MinScore {
			continue
		}
		if _, ok := preferred[h.ClipType]; ok {
			h.TotalScore *= preferredBoost
		}
		out = append(out, h)
	}
	fusion.Rank(out)
	if opts.MaxClips > 0 && len(out) > opts.MaxClips {
		out = out[:opts.MaxClips]
	}
	return out
}

func clampToDuration(hs []types.DetectedHighlight, duration float64) []types.DetectedHighlight {
	if duration <= 0 {
		return hs
	}
	out := hs[:0]
	for _, h := range hs {
		h.EndTime = math.Min(h.EndTime, duration)
		if h.EndTime <= h.StartTime {
			continue
		}
		h.Duration = h.EndTime - h.StartTime
		out = append(out, h)
	}
	return out
}
