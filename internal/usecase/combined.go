package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/forPelevin/vodclip/internal/types"
)

type DetectAndExtractResult struct {
	Detection  types.DetectHighlightsResult `json:"detection"`
	Extraction types.ExtractClipsResult     `json:"extraction"`
}

// DetectAndExtract feeds detected highlights straight into clip extraction.
// Finding nothing is not an error; the extraction part is then empty.
func (u Usecase) DetectAndExtract(ctx context.Context, locator string, dopts types.DetectOptions, eopts ExtractOptions) (DetectAndExtractResult, error) {
	det, err := u.DetectHighlights(ctx, locator, dopts)
	if err != nil {
		return DetectAndExtractResult{}, err
	}
	res := DetectAndExtractResult{
		Detection:  det,
		Extraction: types.ExtractClipsResult{Clips: []types.ExtractedClip{}, Errors: []types.ClipError{}},
	}
	if len(det.Highlights) == 0 {
		u.d.Logger.Info().Str("video", det.Metadata.VideoID).Msg("no highlights found, nothing to extract")
		return res, nil
	}
	res.Extraction, err = u.ExtractClips(ctx, locator, HighlightsToSpecs(det.Highlights), eopts)
	return res, err
}

// HighlightsToSpecs names clips highlight-NN-<type> in rank order.
func HighlightsToSpecs(hs []types.DetectedHighlight) []types.ClipExtractionSpec {
	specs := make([]types.ClipExtractionSpec, 0, len(hs))
	for i, h := range hs {
		specs = append(specs, types.ClipExtractionSpec{
			StartTime: timecode.Clock(h.StartTime),
			EndTime:   timecode.Clock(math.Ceil(h.EndTime)),
			Name:      fmt.Sprintf("highlight-%02d-%s", i+1, h.ClipType),
		})
	}
	return specs
}
