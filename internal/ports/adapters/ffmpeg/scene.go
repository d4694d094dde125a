package ffmpeg

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var rePtsTime = regexp.MustCompile(`pts_time:\s*(-?[0-9]+(?:\.[0-9]+)?)`)

// ParseSceneOutput extracts scene-change timestamps from showinfo lines on
// ffmpeg's diagnostic stream. Output is sorted and de-duplicated.
func ParseSceneOutput(output string) []float64 {
	seen := map[float64]struct{}{}
	var out []float64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "showinfo") {
			continue
		}
		m := rePtsTime.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v < 0 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
