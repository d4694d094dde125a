package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forPelevin/vodclip/internal/domain/fusion"
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/rs/zerolog"
)

type downloadCall struct {
	quality    string
	start, end float64
	dir        string
}

type fakeSource struct {
	mu          sync.Mutex
	md          types.VideoMetadata
	mdErr       error
	downloadErr error
	downloads   []downloadCall
}

func (f *fakeSource) FetchMetadata(context.Context, string) (types.VideoMetadata, error) {
	return f.md, f.mdErr
}

func (f *fakeSource) DownloadRange(_ context.Context, _ string, quality string, start, end float64, outDir string) (string, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, downloadCall{quality: quality, start: start, end: end, dir: outDir})
	f.mu.Unlock()
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	p := filepath.Join(outDir, "source.mp4")
	return p, os.WriteFile(p, []byte("video"), 0o644)
}

type fakeTranscript struct {
	moments []types.ScoredMoment
}

func (f fakeTranscript) Analyze(context.Context, string) []types.ScoredMoment { return f.moments }

type fakeMotion struct {
	moments  []types.ScoredMoment
	seenPath string
	existed  bool
}

func (f *fakeMotion) Analyze(_ context.Context, path string) []types.ScoredMoment {
	f.seenPath = path
	_, err := os.Stat(path)
	f.existed = err == nil
	return f.moments
}

type trimCall struct {
	start, duration float64
}

type fakeTrimmer struct {
	mu     sync.Mutex
	failOn string
	calls  []trimCall
}

func (f *fakeTrimmer) TrimStreamCopy(_ context.Context, _ string, start, duration float64, outPath string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, trimCall{start: start, duration: duration})
	f.mu.Unlock()
	if f.failOn != "" && strings.Contains(outPath, f.failOn) {
		return "", types.NewStageError(types.StageTrim, errors.New("ffmpeg trim: exit status 1"))
	}
	return outPath, os.WriteFile(outPath, []byte("clip"), 0o644)
}

type fakeStorage struct {
	mu      sync.Mutex
	failOn  string
	delay   time.Duration
	uploads []string
}

func (f *fakeStorage) Upload(_ context.Context, localPath, displayName, folderKey string) (types.UploadResult, error) {
	if f.delay > 0 && strings.HasSuffix(displayName, "-01.mp4") {
		time.Sleep(f.delay)
	}
	if _, err := os.Stat(localPath); err != nil {
		return types.UploadResult{}, err
	}
	if f.failOn != "" && strings.Contains(displayName, f.failOn) {
		return types.UploadResult{}, errors.New("storage quota exceeded")
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, displayName)
	f.mu.Unlock()
	return types.UploadResult{
		StorageID:  folderKey + "/" + displayName,
		StorageURL: "https://cdn.example/" + folderKey + "/" + displayName,
	}, nil
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type harness struct {
	source  *fakeSource
	motion  *fakeMotion
	trimmer *fakeTrimmer
	storage *fakeStorage
	workDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		source:  &fakeSource{md: types.VideoMetadata{ID: "vid1", Title: "Live coding", DurationSeconds: 600}},
		motion:  &fakeMotion{},
		trimmer: &fakeTrimmer{},
		storage: &fakeStorage{},
		workDir: t.TempDir(),
	}
}

func (h *harness) usecase(transcript []types.ScoredMoment) Usecase {
	return New(Deps{
		Source:     h.source,
		Transcript: fakeTranscript{moments: transcript},
		Motion:     h.motion,
		Trimmer:    h.trimmer,
		Storage:    h.storage,
		Fusion:     fusion.DefaultConfig(),
		WorkDir:    h.workDir,
		Now:        func() time.Time { return fixedNow },
		Logger:     zerolog.Nop(),
	})
}

// assertWorkDirEmpty checks that every run directory was removed.
func assertWorkDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected run dirs to be cleaned up, found %v", names)
	}
}
