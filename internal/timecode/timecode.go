package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/vodclip/internal/types"
)

var fieldRE = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Parse converts "SS", "MM:SS" or "HH:MM:SS" (each optionally fractional) to seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty timestamp", types.ErrInvalidRange)
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: bad timestamp %q", types.ErrInvalidRange, s)
	}

	var total float64
	for i, p := range parts {
		if !fieldRE.MatchString(p) {
			return 0, fmt.Errorf("%w: bad timestamp %q", types.ErrInvalidRange, s)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("%w: bad timestamp %q", types.ErrInvalidRange, s)
		}
		// only the last field may carry a fraction or exceed 59
		if i < len(parts)-1 && v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: bad timestamp %q", types.ErrInvalidRange, s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: bad timestamp %q", types.ErrInvalidRange, s)
		}
		total = total*60 + v
	}
	return total, nil
}

// Valid reports whether Parse would accept s.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Clock formats whole seconds as HH:MM:SS.
func Clock(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	n := int(math.Floor(sec))
	return fmt.Sprintf("%02d:%02d:%02d", n/3600, (n%3600)/60, n%60)
}

// Seconds formats a value the way ffmpeg and yt-dlp arguments expect.
func Seconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
