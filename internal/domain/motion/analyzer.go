package motion

import (
	"context"

	"github.com/forPelevin/vodclip/internal/ports"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

// Analyzer scores visual activity of a local video file.
type Analyzer struct {
	detector ports.SceneDetector
	cfg      Config
	logger   zerolog.Logger
}

func NewAnalyzer(logger zerolog.Logger, detector ports.SceneDetector, cfg Config) *Analyzer {
	return &Analyzer{
		detector: detector,
		cfg:      cfg,
		logger:   logger.With().Str("component", "motion-analyzer").Logger(),
	}
}

// Analyze never fails: a missing tool or timeout yields no motion signal.
func (a *Analyzer) Analyze(ctx context.Context, path string) []types.ScoredMoment {
	scenes, err := a.detector.DetectScenes(ctx, path, a.cfg.SceneThreshold)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("scene detection unavailable, continuing without motion signal")
		return nil
	}
	duration, err := a.detector.ProbeDuration(ctx, path)
	if err != nil {
		a.logger.Debug().Err(err).Msg("probe duration failed, bounding windows by last scene change")
		duration = 0
	}
	moments := Moments(scenes, duration, a.cfg)
	a.logger.Info().
		Int("scene_changes", len(scenes)).
		Int("moments", len(moments)).
		Msg("motion analysis complete")
	return moments
}
