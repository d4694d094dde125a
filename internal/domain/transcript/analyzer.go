package transcript

import (
	"context"
	"strings"

	"github.com/forPelevin/vodclip/internal/ports"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

// Analyzer turns a video locator into transcript moments. Sources are tried in
// order until one yields text; none yielding text is a valid, empty result.
type Analyzer struct {
	sources  []ports.TranscriptFetcher
	taxonomy Taxonomy
	logger   zerolog.Logger
}

func NewAnalyzer(logger zerolog.Logger, tax Taxonomy, sources ...ports.TranscriptFetcher) *Analyzer {
	return &Analyzer{
		sources:  sources,
		taxonomy: tax,
		logger:   logger.With().Str("component", "transcript-analyzer").Logger(),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, locator string) []types.ScoredMoment {
	raw := a.fetch(ctx, locator)
	if raw == "" {
		a.logger.Warn().Str("locator", locator).Msg("no transcript available, continuing without transcript signal")
		return nil
	}
	moments := a.AnalyzeText(raw)
	a.logger.Info().Int("moments", len(moments)).Msg("transcript analysis complete")
	return moments
}

// AnalyzeText scores already-fetched transcript text.
func (a *Analyzer) AnalyzeText(raw string) []types.ScoredMoment {
	segs := Parse(raw, a.taxonomy.SentenceSpace)
	scored := make([]Scored, 0, len(segs))
	for _, s := range segs {
		scored = append(scored, a.taxonomy.Score(s))
	}
	return a.taxonomy.Cluster(scored)
}

func (a *Analyzer) fetch(ctx context.Context, locator string) string {
	for i, src := range a.sources {
		if ctx.Err() != nil {
			return ""
		}
		text, err := src.FetchTranscript(ctx, locator)
		if err != nil {
			a.logger.Warn().Err(err).Int("source", i).Msg("transcript source failed")
			continue
		}
		if strings.TrimSpace(text) == "" {
			a.logger.Debug().Int("source", i).Msg("transcript source returned nothing")
			continue
		}
		return text
	}
	return ""
}
