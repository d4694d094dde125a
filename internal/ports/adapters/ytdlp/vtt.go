package ytdlp

import (
	"html"
	"regexp"
	"strings"

	"github.com/forPelevin/vodclip/internal/timecode"
)

var reTag = regexp.MustCompile(`<[^>]*>`)

// VTTToBracketed converts a WebVTT caption file into "[HH:MM:SS] text" lines.
// Auto-captions roll: each cue repeats the previous cue's last line, so lines
// already shown in the previous cue are dropped.
func VTTToBracketed(vtt string) string {
	var (
		b       strings.Builder
		inCue   bool
		start   float64
		cue     []string
		prevCue map[string]struct{}
	)
	flush := func() {
		if !inCue {
			return
		}
		shown := make(map[string]struct{}, len(cue))
		var fresh []string
		for _, l := range cue {
			shown[l] = struct{}{}
			if _, dup := prevCue[l]; dup {
				continue
			}
			fresh = append(fresh, l)
		}
		if len(fresh) > 0 {
			b.WriteString("[" + timecode.Clock(start) + "] " + strings.Join(fresh, " ") + "\n")
		}
		if len(cue) > 0 {
			prevCue = shown
		}
		inCue = false
		cue = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(vtt, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "-->"):
			flush()
			s, err := timecode.Parse(strings.TrimSpace(strings.SplitN(line, "-->", 2)[0]))
			if err != nil {
				continue
			}
			start, inCue = s, true
		case line == "":
			flush()
		case inCue:
			text := strings.TrimSpace(html.UnescapeString(reTag.ReplaceAllString(line, "")))
			if text != "" {
				cue = append(cue, text)
			}
		}
	}
	flush()
	return b.String()
}
