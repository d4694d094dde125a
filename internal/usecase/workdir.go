package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newRunDir creates a fresh directory owned by a single invocation.
func newRunDir(root, label string, now time.Time) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	dir := buildRunDir(root, label, now)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}

func buildRunDir(root, label string, now time.Time) string {
	name := normalizePathSegment(label)
	if name == "" {
		name = "run"
	}
	if r := []rune(name); len(r) > 48 {
		name = strings.Trim(string(r[:48]), "-")
	}
	ts := now.UTC().Format("20060102-150405Z")
	return filepath.Join(root, fmt.Sprintf("%s-%s-%s", name, ts, uuid.NewString()[:8]))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func removeRunDir(logger zerolog.Logger, dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn().Err(err).Str("path", dir).Msg("failed to remove run dir")
		return
	}
	logger.Debug().Str("path", dir).Msg("run dir removed")
}
