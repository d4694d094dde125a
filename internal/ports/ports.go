package ports

import (
	"context"

	"github.com/forPelevin/vodclip/internal/types"
)

// VideoSource retrieves metadata and media for a video locator.
type VideoSource interface {
	FetchMetadata(ctx context.Context, locator string) (types.VideoMetadata, error)
	// DownloadRange writes the [start, end) span into outDir and returns the file path.
	// end <= 0 downloads the whole video.
	DownloadRange(ctx context.Context, locator, quality string, start, end float64, outDir string) (string, error)
}

// TranscriptFetcher returns raw transcript text. An empty string with a nil
// error means the transcript is unavailable.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, locator string) (string, error)
}

type Trimmer interface {
	// TrimStreamCopy cuts [start, start+duration) out of inPath without re-encoding.
	TrimStreamCopy(ctx context.Context, inPath string, start, duration float64, outPath string) (string, error)
}

type SceneDetector interface {
	DetectScenes(ctx context.Context, inPath string, threshold float64) ([]float64, error)
	ProbeDuration(ctx context.Context, inPath string) (float64, error)
}

type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, inPath, outWav string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// Storage disseminates a finished clip. folderKey is a YYYY-MM-DD date key.
type Storage interface {
	Upload(ctx context.Context, localPath, displayName, folderKey string) (types.UploadResult, error)
}
