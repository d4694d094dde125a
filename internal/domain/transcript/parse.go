package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/forPelevin/vodclip/internal/types"
)

var (
	reBracket  = regexp.MustCompile(`\[(?:(\d{1,2}):)?(\d{1,2}):(\d{2})(?:[.,]\d{1,3})?\]`)
	reSentence = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Parse splits raw transcript text into segments. Bracketed [HH:MM:SS]
// timestamps win; otherwise every sentence gets a synthetic window of spacing seconds.
func Parse(raw string, spacing float64) []types.TranscriptSegment {
	if spacing <= 0 {
		spacing = 5
	}
	if locs := reBracket.FindAllStringSubmatchIndex(raw, -1); len(locs) > 0 {
		return parseBracketed(raw, locs, spacing)
	}
	return parseSentences(raw, spacing)
}

func parseBracketed(raw string, locs [][]int, spacing float64) []types.TranscriptSegment {
	var out []types.TranscriptSegment
	if lead := cleanText(raw[:locs[0][0]]); lead != "" {
		out = append(out, types.TranscriptSegment{Text: lead, StartTime: 0})
	}
	for i, loc := range locs {
		start := bracketSeconds(raw, loc)
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := cleanText(raw[loc[1]:end])
		if text == "" {
			continue
		}
		// Repeated or backwards stamps fold into the previous segment.
		if n := len(out); n > 0 && start <= out[n-1].StartTime {
			out[n-1].Text += " " + text
			continue
		}
		out = append(out, types.TranscriptSegment{Text: text, StartTime: start})
	}
	for i := range out {
		if i+1 < len(out) {
			out[i].EndTime = out[i+1].StartTime
		} else {
			out[i].EndTime = out[i].StartTime + spacing
		}
	}
	return out
}

func bracketSeconds(raw string, loc []int) float64 {
	var h, m, s int
	if loc[2] >= 0 {
		h, _ = strconv.Atoi(raw[loc[2]:loc[3]])
	}
	m, _ = strconv.Atoi(raw[loc[4]:loc[5]])
	s, _ = strconv.Atoi(raw[loc[6]:loc[7]])
	return float64(h*3600 + m*60 + s)
}

func parseSentences(raw string, spacing float64) []types.TranscriptSegment {
	var out []types.TranscriptSegment
	for _, m := range reSentence.FindAllString(raw, -1) {
		text := cleanText(m)
		if text == "" || strings.Trim(text, ".!? ") == "" {
			continue
		}
		start := float64(len(out)) * spacing
		out = append(out, types.TranscriptSegment{Text: text, StartTime: start, EndTime: start + spacing})
	}
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatBracketed renders timed segments back into "[HH:MM:SS] text" lines,
// the shape Parse prefers. Caption and ASR fallbacks funnel through it.
func FormatBracketed(segs []types.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		text := cleanText(s.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s\n", timecode.Clock(s.Start), text)
	}
	return b.String()
}
