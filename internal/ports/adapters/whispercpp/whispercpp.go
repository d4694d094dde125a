package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

// Adapter transcribes a 16 kHz mono wav with a local whisper.cpp build.
type Adapter struct {
	bin     string
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

func New(logger zerolog.Logger, binPath, modelPath string, timeout time.Duration) *Adapter {
	return &Adapter{
		bin:     binPath,
		model:   modelPath,
		timeout: timeout,
		logger:  logger.With().Str("component", "whisper").Logger(),
	}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	a.logger.Debug().Strs("args", args).Msg("transcribing")
	b, err := exec.CommandContext(ctx, a.bin, args...).CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return decode(jb)
}

// whisper.cpp -oj writes {"transcription":[{"offsets":{"from":ms,"to":ms},"text":...}]}.
type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func decode(b []byte) (types.Transcript, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("decode whisper json: %w", err)
	}
	var tr types.Transcript
	for _, s := range out.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return tr, nil
}
