package usecase

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/vodclip/internal/domain/transcript"
	"github.com/forPelevin/vodclip/internal/ports"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

// LocalTranscriber is the last transcript fallback: it downloads the video at
// low quality, extracts mono 16 kHz audio and runs local ASR on it.
type LocalTranscriber struct {
	Source  ports.VideoSource
	Audio   ports.AudioExtractor
	ASR     ports.ASR
	WorkDir string
	Logger  zerolog.Logger
}

func (t LocalTranscriber) FetchTranscript(ctx context.Context, locator string) (string, error) {
	dir, err := newRunDir(t.WorkDir, "asr", time.Now())
	if err != nil {
		return "", err
	}
	defer removeRunDir(t.Logger, dir)

	video, err := t.Source.DownloadRange(ctx, locator, "360", 0, 0, dir)
	if err != nil {
		return "", types.NewStageError(types.StageDownload, err)
	}
	wav := filepath.Join(dir, "audio.wav")
	if err := t.Audio.ExtractAudioMono16k(ctx, video, wav); err != nil {
		return "", types.NewStageError(types.StageTranscript, err)
	}
	// The source video is no longer needed once audio is out.
	if err := os.Remove(video); err != nil {
		t.Logger.Debug().Err(err).Str("path", video).Msg("remove source video")
	}
	tr, err := t.ASR.Transcribe(ctx, wav, dir)
	if err != nil {
		return "", types.NewStageError(types.StageTranscript, err)
	}
	return transcript.FormatBracketed(tr.Segments), nil
}

var _ ports.TranscriptFetcher = LocalTranscriber{}
