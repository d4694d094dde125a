package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/forPelevin/vodclip/internal/config"
	"github.com/forPelevin/vodclip/internal/domain/motion"
	"github.com/forPelevin/vodclip/internal/domain/transcript"
	"github.com/forPelevin/vodclip/internal/ports"
	"github.com/forPelevin/vodclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vodclip/internal/ports/adapters/localfs"
	"github.com/forPelevin/vodclip/internal/ports/adapters/supabase"
	"github.com/forPelevin/vodclip/internal/ports/adapters/transcriptapi"
	"github.com/forPelevin/vodclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/vodclip/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/forPelevin/vodclip/internal/usecase"
	"github.com/rs/zerolog"
)

type Config struct {
	App    *config.Config
	Logger zerolog.Logger
}

// Validate rejects configurations that would fail mid-run. Every error wraps
// types.ErrConfig.
func (c Config) Validate() error {
	if c.App == nil {
		return fmt.Errorf("%w: configuration is missing", types.ErrConfig)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrConfig, err)
	}
	return nil
}

func (c Config) validate() error {
	app := c.App
	switch app.Storage.Backend {
	case config.BackendSupabase:
		if app.Secrets.SupabaseURL == "" || app.Secrets.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage backend")
		}
		if app.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the supabase storage backend")
		}
	case config.BackendLocal:
		if app.Storage.LocalRoot == "" {
			return errors.New("storage.local_root is required for the local storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", app.Storage.Backend)
	}

	if app.Secrets.TranscriptAPIURL != "" {
		if err := transcriptapi.ValidateBaseURL(app.Secrets.TranscriptAPIURL, app.TranscriptAPI.AllowedHosts); err != nil {
			return err
		}
	}
	if app.Tools.WhisperModel != "" {
		if _, err := os.Stat(app.Tools.WhisperModel); err != nil {
			return fmt.Errorf("whisper model: %w", err)
		}
	}

	t := app.Timeouts
	for name, d := range map[string]time.Duration{
		"metadata":       t.Metadata,
		"download":       t.Download,
		"captions":       t.Captions,
		"scene_detect":   t.SceneDetect,
		"trim":           t.Trim,
		"audio":          t.Audio,
		"probe":          t.Probe,
		"transcript_api": t.Transcript,
		"whisper":        t.Whisper,
	} {
		if d <= 0 {
			return fmt.Errorf("timeouts.%s must be > 0", name)
		}
	}

	if app.Fusion.BucketSize <= 0 {
		return errors.New("fusion.bucket_size must be > 0")
	}
	if app.Motion.WindowSize <= 0 || app.Motion.Stride <= 0 {
		return errors.New("motion.window_size and motion.stride must be > 0")
	}
	return nil
}

// Service is the process-wide entry point: detection, extraction and the
// combined operation over the configured adapters.
type Service struct {
	usecase.Usecase
}

func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := cfg.App
	logger := cfg.Logger

	yt := ytdlp.New(logger, app.Tools.YTDLP, ytdlp.Timeouts{
		Metadata: app.Timeouts.Metadata,
		Download: app.Timeouts.Download,
		Captions: app.Timeouts.Captions,
	})
	ff := ffmpeg.New(logger, app.Tools.FFmpeg, app.Tools.FFprobe, ffmpeg.Timeouts{
		Trim:        app.Timeouts.Trim,
		SceneDetect: app.Timeouts.SceneDetect,
		Audio:       app.Timeouts.Audio,
		Probe:       app.Timeouts.Probe,
	})

	store, err := newStorage(app, logger)
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Deps{
		Source:     yt,
		Transcript: transcript.NewAnalyzer(logger, app.Taxonomy, transcriptSources(app, logger, yt, ff)...),
		Motion:     motion.NewAnalyzer(logger, ff, app.Motion),
		Trimmer:    ff,
		Storage:    store,
		Fusion:     app.Fusion,
		WorkDir:    app.WorkDir,
		Logger:     logger,
	})
	return &Service{Usecase: uc}, nil
}

// transcriptSources orders the transcript fallbacks: API, captions, local ASR.
func transcriptSources(app *config.Config, logger zerolog.Logger, yt *ytdlp.Adapter, ff *ffmpeg.Adapter) []ports.TranscriptFetcher {
	var out []ports.TranscriptFetcher
	if app.Secrets.TranscriptAPIURL != "" {
		out = append(out, transcriptapi.New(logger, app.Secrets.TranscriptAPIURL, app.Secrets.TranscriptAPIKey, app.Timeouts.Transcript))
	}
	out = append(out, yt)
	if app.Tools.WhisperModel != "" {
		out = append(out, usecase.LocalTranscriber{
			Source:  yt,
			Audio:   ff,
			ASR:     whispercpp.New(logger, app.Tools.WhisperBin, app.Tools.WhisperModel, app.Timeouts.Whisper),
			WorkDir: app.WorkDir,
			Logger:  logger,
		})
	}
	return out
}

func newStorage(app *config.Config, logger zerolog.Logger) (ports.Storage, error) {
	if app.Storage.Backend == config.BackendSupabase {
		return supabase.New(logger, app.Secrets.SupabaseURL, app.Secrets.SupabaseKey, app.Storage.Bucket)
	}
	return localfs.New(app.Storage.LocalRoot), nil
}

// ensure adapters implement ports
var _ ports.VideoSource = (*ytdlp.Adapter)(nil)
var _ ports.TranscriptFetcher = (*ytdlp.Adapter)(nil)
var _ ports.TranscriptFetcher = (*transcriptapi.Adapter)(nil)
var _ ports.Trimmer = (*ffmpeg.Adapter)(nil)
var _ ports.SceneDetector = (*ffmpeg.Adapter)(nil)
var _ ports.AudioExtractor = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.Storage = (*supabase.Adapter)(nil)
var _ ports.Storage = (*localfs.Adapter)(nil)
