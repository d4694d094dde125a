package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/forPelevin/vodclip/internal/types"
)

type Config struct {
	SceneThreshold float64 `yaml:"scene_threshold"`
	WindowSize     float64 `yaml:"window_size"`
	Stride         float64 `yaml:"stride"`
	HighDensity    float64 `yaml:"high_density"`
	MediumDensity  float64 `yaml:"medium_density"`
	HighScore      float64 `yaml:"high_score"`
	MediumScore    float64 `yaml:"medium_score"`
	MergeGap       float64 `yaml:"merge_gap"`
	MinDuration    float64 `yaml:"min_duration"`
}

func DefaultConfig() Config {
	return Config{
		SceneThreshold: 0.3,
		WindowSize:     10,
		Stride:         5,
		HighDensity:    0.5,
		MediumDensity:  0.2,
		HighScore:      8,
		MediumScore:    4,
		MergeGap:       5,
		MinDuration:    3,
	}
}

func (c Config) level(density float64) types.ActivityLevel {
	switch {
	case density >= c.HighDensity:
		return types.ActivityHigh
	case density >= c.MediumDensity:
		return types.ActivityMedium
	default:
		return types.ActivityLow
	}
}

func (c Config) score(l types.ActivityLevel) float64 {
	switch l {
	case types.ActivityHigh:
		return c.HighScore
	case types.ActivityMedium:
		return c.MediumScore
	}
	return 0
}

// Segments buckets scene-change timestamps into overlapping windows.
// duration bounds the timeline; when unknown (<= 0) the last scene change does.
func Segments(scenes []float64, duration float64, cfg Config) []types.MotionSegment {
	if len(scenes) == 0 || cfg.WindowSize <= 0 || cfg.Stride <= 0 {
		return nil
	}
	ts := append([]float64(nil), scenes...)
	sort.Float64s(ts)

	end := duration
	if end <= 0 {
		end = ts[len(ts)-1] + cfg.Stride
	}

	var out []types.MotionSegment
	for start := 0.0; start < end; start += cfg.Stride {
		wEnd := math.Min(start+cfg.WindowSize, end)
		lo := sort.SearchFloat64s(ts, start)
		hi := sort.SearchFloat64s(ts, start+cfg.WindowSize)
		count := hi - lo
		density := float64(count) / cfg.WindowSize
		out = append(out, types.MotionSegment{
			StartTime:        start,
			EndTime:          wEnd,
			MotionScore:      math.Min(100, float64(count)*100/cfg.WindowSize),
			ActivityLevel:    cfg.level(density),
			SceneChangeCount: count,
		})
	}
	return out
}

// Cluster merges active windows into moments; low windows end a cluster.
func Cluster(segs []types.MotionSegment, cfg Config) []types.ScoredMoment {
	var (
		out      []types.ScoredMoment
		cur      *types.ScoredMoment
		curLevel types.ActivityLevel
		curCount int
	)
	flush := func() {
		if cur == nil {
			return
		}
		if cur.EndTime-cur.StartTime >= cfg.MinDuration {
			cur.Reason = fmt.Sprintf("motion:%s scenes=%d", curLevel, curCount)
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, s := range segs {
		if s.ActivityLevel == types.ActivityLow {
			flush()
			continue
		}
		score := cfg.score(s.ActivityLevel)
		if cur != nil && s.StartTime-cur.EndTime <= cfg.MergeGap {
			cur.EndTime = math.Max(cur.EndTime, s.EndTime)
			if score > cur.Score {
				cur.Score = score
				curLevel = s.ActivityLevel
			}
			curCount = max(curCount, s.SceneChangeCount)
			continue
		}
		flush()
		cur = &types.ScoredMoment{
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Score:     score,
			Source:    types.SourceMotion,
		}
		curLevel = s.ActivityLevel
		curCount = s.SceneChangeCount
	}
	flush()
	return out
}

// Moments is Segments followed by Cluster.
func Moments(scenes []float64, duration float64, cfg Config) []types.ScoredMoment {
	return Cluster(Segments(scenes, duration, cfg), cfg)
}
