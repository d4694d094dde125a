package usecase

import (
	"context"
	"time"

	"github.com/forPelevin/vodclip/internal/domain/fusion"
	"github.com/forPelevin/vodclip/internal/ports"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, locator string) []types.ScoredMoment
}

type MotionAnalyzer interface {
	Analyze(ctx context.Context, path string) []types.ScoredMoment
}

type Deps struct {
	Source     ports.VideoSource
	Transcript TranscriptAnalyzer
	// Motion may be nil; detection then always runs transcript-only.
	Motion  MotionAnalyzer
	Trimmer ports.Trimmer
	Storage ports.Storage

	Fusion fusion.Config
	// WorkDir is the parent of per-run directories. Empty means os.TempDir().
	WorkDir string
	Now     func() time.Time
	Logger  zerolog.Logger
}

type Usecase struct {
	d        Deps
	validate *validator.Validate
}

func New(d Deps) Usecase {
	if d.Now == nil {
		d.Now = time.Now
	}
	return Usecase{d: d, validate: NewValidator()}
}
