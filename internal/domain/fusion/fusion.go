package fusion

import (
	"math"
	"sort"
	"strings"

	"github.com/forPelevin/vodclip/internal/types"
)

type Weights struct {
	Transcript float64 `yaml:"transcript"`
	Motion     float64 `yaml:"motion"`
	Audio      float64 `yaml:"audio"`
}

func (w Weights) Total(s types.Signals) float64 {
	return s.Transcript*w.Transcript + s.Motion*w.Motion + s.Audio*w.Audio
}

type Config struct {
	BucketSize        float64 `yaml:"bucket_size"`
	Weights           Weights `yaml:"weights"`
	MinBucketScore    float64 `yaml:"min_bucket_score"`
	MergeGap          float64 `yaml:"merge_gap"`
	RealizationMarker string  `yaml:"realization_marker"`
}

func DefaultConfig() Config {
	return Config{
		BucketSize:        10,
		Weights:           Weights{Transcript: 2.0, Motion: 1.5, Audio: 1.0},
		MinBucketScore:    3,
		MergeGap:          5,
		RealizationMarker: "aha:",
	}
}

type bucket struct {
	start   float64
	signals types.Signals
	reasons []string
}

// Fuse merges per-analyzer moments into ranked highlights.
//
// A moment counts only toward the bucket holding its start time, so long
// moments are under-counted in the buckets they span. Kept as is: ranking
// depends on it.
func Fuse(transcript, motion, audio []types.ScoredMoment, cfg Config) []types.DetectedHighlight {
	if cfg.BucketSize <= 0 {
		return nil
	}
	buckets := map[int64]*bucket{}
	add := func(ms []types.ScoredMoment, apply func(*types.Signals, float64)) {
		for _, m := range ms {
			idx := int64(math.Floor(m.StartTime / cfg.BucketSize))
			b, ok := buckets[idx]
			if !ok {
				b = &bucket{start: float64(idx) * cfg.BucketSize}
				buckets[idx] = b
			}
			apply(&b.signals, m.Score)
			if m.Reason != "" {
				b.reasons = append(b.reasons, m.Reason)
			}
		}
	}
	add(transcript, func(s *types.Signals, v float64) { s.Transcript += v })
	add(motion, func(s *types.Signals, v float64) { s.Motion += v })
	add(audio, func(s *types.Signals, v float64) { s.Audio += v })

	var hs []types.DetectedHighlight
	for _, b := range buckets {
		total := cfg.Weights.Total(b.signals)
		if total < cfg.MinBucketScore {
			continue
		}
		reason := strings.Join(b.reasons, "; ")
		hs = append(hs, types.DetectedHighlight{
			StartTime:  b.start,
			EndTime:    b.start + cfg.BucketSize,
			Duration:   cfg.BucketSize,
			TotalScore: total,
			Signals:    b.signals,
			ClipType:   Classify(b.signals, reason, cfg.RealizationMarker),
			Reason:     reason,
			Confidence: Confidence(total, b.signals),
		})
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].StartTime < hs[j].StartTime })

	merged := Merge(hs, cfg)
	Rank(merged)
	return merged
}

// Merge joins highlights whose start falls within MergeGap of the running
// window end. Input must be sorted by start time.
func Merge(hs []types.DetectedHighlight, cfg Config) []types.DetectedHighlight {
	if len(hs) == 0 {
		return nil
	}
	out := make([]types.DetectedHighlight, 0, len(hs))
	cur := hs[0]
	for _, h := range hs[1:] {
		if h.StartTime-cur.EndTime <= cfg.MergeGap {
			cur.EndTime = math.Max(cur.EndTime, h.EndTime)
			cur.Duration = cur.EndTime - cur.StartTime
			cur.TotalScore += h.TotalScore
			cur.Signals = cur.Signals.Add(h.Signals)
			cur.Confidence = math.Max(cur.Confidence, h.Confidence)
			cur.Reason = joinReasons(cur.Reason, h.Reason)
			cur.ClipType = Classify(cur.Signals, cur.Reason, cfg.RealizationMarker)
			continue
		}
		out = append(out, cur)
		cur = h
	}
	return append(out, cur)
}

// Rank orders highlights by total score, earliest first on ties.
func Rank(hs []types.DetectedHighlight) {
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].TotalScore == hs[j].TotalScore {
			return hs[i].StartTime < hs[j].StartTime
		}
		return hs[i].TotalScore > hs[j].TotalScore
	})
}

// Classify is a pure function of the signal totals and reason text.
// Rules are checked in order; the first match wins.
func Classify(s types.Signals, reason, realizationMarker string) types.ClipType {
	switch {
	case realizationMarker != "" && strings.Contains(reason, realizationMarker):
		return types.ClipAhaMoment
	case s.Transcript >= 5 && s.Motion < 3:
		return types.ClipExplanation
	case s.Motion >= 7 && s.Transcript < 3:
		return types.ClipBuildMoment
	case s.Transcript >= 3 && s.Motion >= 5:
		return types.ClipDemo
	default:
		return types.ClipExplanation
	}
}

// Confidence favours agreement between sources over raw strength.
func Confidence(total float64, s types.Signals) float64 {
	c := math.Min(total/10, 0.8) + 0.05*float64(s.Sources())
	return math.Min(c, 1.0)
}

func joinReasons(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "; " + b
}
