package transcript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forPelevin/vodclip/internal/types"
)

// Scored is a segment after taxonomy scoring.
type Scored struct {
	Segment types.TranscriptSegment
	Score   float64
	Reasons []string
}

// Score rates a single segment against the taxonomy. Deterministic and
// independent of parsing so weights can be tuned in isolation.
func (t Taxonomy) Score(seg types.TranscriptSegment) Scored {
	lower := strings.ToLower(seg.Text)
	out := Scored{Segment: seg}

	for _, tier := range []Tier{t.Explanation, t.Process, t.Realization} {
		for _, p := range tier.Phrases {
			if p == "" || !strings.Contains(lower, strings.ToLower(p)) {
				continue
			}
			out.Score += tier.Weight
			out.Reasons = append(out.Reasons, tier.Tag+":"+p)
		}
	}

	var terms []string
	for _, term := range t.Technical.Terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			terms = append(terms, term)
		}
	}
	if len(terms) > 0 && len(terms) >= t.Technical.MinDistinct {
		out.Score += t.Technical.Weight * float64(len(terms))
		out.Reasons = append(out.Reasons, fmt.Sprintf("%s:%s", t.Technical.Tag, strings.Join(terms, ",")))
	}

	words := len(strings.Fields(seg.Text))
	for _, lb := range t.Length {
		if words > lb.Words {
			out.Score += lb.Bonus
			out.Reasons = append(out.Reasons, fmt.Sprintf("long>%d", lb.Words))
		}
	}

	if strings.Contains(seg.Text, "?") && strings.Contains(seg.Text, ".") {
		out.Score += t.QABonus
		out.Reasons = append(out.Reasons, "qa")
	}
	return out
}

// Cluster keeps segments scoring at least MinScore, merges neighbours that
// start within MergeGap of the running cluster end, then pads each cluster
// by LeadIn/LeadOut.
func (t Taxonomy) Cluster(scored []Scored) []types.ScoredMoment {
	kept := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score >= t.MinScore {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Segment.StartTime < kept[j].Segment.StartTime
	})

	var out []types.ScoredMoment
	cur := toMoment(kept[0])
	for _, s := range kept[1:] {
		if s.Segment.StartTime-cur.EndTime <= t.MergeGap {
			cur.EndTime = max(cur.EndTime, s.Segment.EndTime)
			cur.Score += s.Score
			cur.Reason = joinReasons(cur.Reason, strings.Join(s.Reasons, "; "))
			continue
		}
		out = append(out, cur)
		cur = toMoment(s)
	}
	out = append(out, cur)

	for i := range out {
		out[i].StartTime = max(0, out[i].StartTime-t.LeadIn)
		out[i].EndTime += t.LeadOut
	}
	return out
}

func toMoment(s Scored) types.ScoredMoment {
	return types.ScoredMoment{
		StartTime: s.Segment.StartTime,
		EndTime:   s.Segment.EndTime,
		Score:     s.Score,
		Reason:    strings.Join(s.Reasons, "; "),
		Source:    types.SourceTranscript,
	}
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
