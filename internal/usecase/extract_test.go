package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vodclip/internal/types"
)

func threeClips() []types.ClipExtractionSpec {
	return []types.ClipExtractionSpec{
		{StartTime: "0", EndTime: "15", Name: "intro"},
		{StartTime: "01:00", EndTime: "01:30", Name: "broken"},
		{StartTime: "00:03:20", EndTime: "00:03:40", Name: "outro"},
	}
}

func TestExtractClips_DownloadsCoveringRangeOnce(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)

	res, err := uc.ExtractClips(context.Background(), "https://v/1", threeClips(), DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	if len(h.source.downloads) != 1 {
		t.Fatalf("expected exactly one download, got %d", len(h.source.downloads))
	}
	d := h.source.downloads[0]
	if d.start != 0 || d.end != 225 || d.quality != "720" {
		t.Fatalf("unexpected covering download %+v", d)
	}
	if res.Successful != 3 || res.Failed != 0 {
		t.Fatalf("unexpected counts %d/%d: %+v", res.Successful, res.Failed, res.Errors)
	}

	wantTrims := []trimCall{{0, 15}, {60, 30}, {200, 20}}
	if len(h.trimmer.calls) != len(wantTrims) {
		t.Fatalf("expected %d trims, got %d", len(wantTrims), len(h.trimmer.calls))
	}
	for i, w := range wantTrims {
		if h.trimmer.calls[i] != w {
			t.Fatalf("trim %d: got %+v want %+v", i, h.trimmer.calls[i], w)
		}
	}
	for _, c := range res.Clips {
		if c.StorageFolder != "2026-10-16" {
			t.Fatalf("unexpected folder %q", c.StorageFolder)
		}
	}
	assertWorkDirEmpty(t, h.workDir)
}

func TestExtractClips_OffsetsRelativeToPaddedStart(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)

	_, err := uc.ExtractClips(context.Background(), "https://v/1", []types.ClipExtractionSpec{
		{StartTime: "100", EndTime: "110"},
		{StartTime: "130.5", EndTime: "140"},
	}, ExtractOptions{Quality: "best"})
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	d := h.source.downloads[0]
	if d.start != 95 || d.end != 145 {
		t.Fatalf("unexpected covering range %+v", d)
	}
	if h.trimmer.calls[0].start != 5 || h.trimmer.calls[1].start != 35.5 {
		t.Fatalf("unexpected trim offsets %+v", h.trimmer.calls)
	}
}

func TestExtractClips_TrimFailureIsIsolated(t *testing.T) {
	h := newHarness(t)
	h.trimmer.failOn = "broken"
	uc := h.usecase(nil)

	res, err := uc.ExtractClips(context.Background(), "https://v/1", threeClips(), DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	if res.Successful != 2 || len(res.Clips) != 2 {
		t.Fatalf("expected 2 successful clips, got %+v", res)
	}
	if res.Failed != 1 || len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", res.Errors)
	}
	if e := res.Errors[0]; e.Name != "broken" || e.Stage != types.StageTrim {
		t.Fatalf("unexpected clip error %+v", e)
	}
	assertWorkDirEmpty(t, h.workDir)
}

func TestExtractClips_UploadFailureIsIsolated(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.storage.failOn = "outro"
			uc := h.usecase(nil)

			res, err := uc.ExtractClips(context.Background(), "https://v/1", threeClips(), ExtractOptions{Quality: "480", ParallelUploads: parallel})
			if err != nil {
				t.Fatalf("ExtractClips: %v", err)
			}
			if res.Successful != 2 || res.Failed != 1 {
				t.Fatalf("unexpected counts %+v", res)
			}
			if e := res.Errors[0]; e.Name != "outro" || e.Stage != types.StageUpload {
				t.Fatalf("unexpected clip error %+v", e)
			}
			assertWorkDirEmpty(t, h.workDir)
		})
	}
}

func TestExtractClips_ResultsFollowRequestOrder(t *testing.T) {
	h := newHarness(t)
	h.storage.delay = 30 * time.Millisecond
	uc := h.usecase(nil)

	specs := []types.ClipExtractionSpec{
		{StartTime: "10", EndTime: "20", Name: "a-01"},
		{StartTime: "30", EndTime: "40", Name: "b-02"},
		{StartTime: "50", EndTime: "60", Name: "c-03"},
	}
	res, err := uc.ExtractClips(context.Background(), "https://v/1", specs, DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	for i, c := range res.Clips {
		if c.Name != specs[i].Name {
			t.Fatalf("clip %d: got %q want %q", i, c.Name, specs[i].Name)
		}
	}
}

func TestExtractClips_InvalidSpecsBecomeClipErrors(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)

	res, err := uc.ExtractClips(context.Background(), "https://v/1", []types.ClipExtractionSpec{
		{StartTime: "1:xx", EndTime: "2:00", Name: "garbled"},
		{StartTime: "02:00", EndTime: "01:00", Name: "backwards"},
		{StartTime: "10", EndTime: "20"},
	}, DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	if res.Successful != 1 || res.Failed != 2 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.Clips[0].Name != "clip-03" {
		t.Fatalf("expected default clip name, got %q", res.Clips[0].Name)
	}
	for _, e := range res.Errors {
		if e.Stage != types.StageValidate {
			t.Fatalf("expected validate stage, got %+v", e)
		}
	}
	if d := h.source.downloads[0]; d.start != 5 || d.end != 25 {
		t.Fatalf("invalid specs must not widen the covering range: %+v", d)
	}
}

func TestExtractClips_NoUsableClips(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)

	if _, err := uc.ExtractClips(context.Background(), "https://v/1", nil, DefaultExtractOptions()); !errors.Is(err, types.ErrNoClips) {
		t.Fatalf("expected ErrNoClips for empty request, got %v", err)
	}
	res, err := uc.ExtractClips(context.Background(), "https://v/1", []types.ClipExtractionSpec{{StartTime: "5", EndTime: "5"}}, DefaultExtractOptions())
	if !errors.Is(err, types.ErrNoClips) {
		t.Fatalf("expected ErrNoClips, got %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("expected the invalid clip to be reported, got %+v", res)
	}
	if len(h.source.downloads) != 0 {
		t.Fatalf("expected no download, got %d", len(h.source.downloads))
	}
}

func TestExtractClips_InvalidQuality(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)

	_, err := uc.ExtractClips(context.Background(), "https://v/1", threeClips(), ExtractOptions{Quality: "4k"})
	var se *types.StageError
	if !errors.As(err, &se) || se.Stage != types.StageValidate {
		t.Fatalf("expected validate stage error, got %v", err)
	}
}

func TestExtractClips_DownloadFailure(t *testing.T) {
	h := newHarness(t)
	h.source.downloadErr = errors.New("yt-dlp download: exit status 1")
	uc := h.usecase(nil)

	_, err := uc.ExtractClips(context.Background(), "https://v/1", threeClips(), DefaultExtractOptions())
	var se *types.StageError
	if !errors.As(err, &se) || se.Stage != types.StageDownload {
		t.Fatalf("expected download stage error, got %v", err)
	}
	if len(h.trimmer.calls) != 0 {
		t.Fatalf("expected no trims after failed download")
	}
	assertWorkDirEmpty(t, h.workDir)
}

func TestExtractClips_DownloadFailureKeepsEveryReason(t *testing.T) {
	h := newHarness(t)
	h.source.downloadErr = errors.New("boom")
	uc := h.usecase(nil)

	res, err := uc.ExtractClips(context.Background(), "https://v/1", []types.ClipExtractionSpec{
		{StartTime: "bad", EndTime: "10", Name: "broken"},
		{StartTime: "0", EndTime: "10", Name: "ok"},
	}, DefaultExtractOptions())
	var se *types.StageError
	if !errors.As(err, &se) || se.Stage != types.StageDownload {
		t.Fatalf("expected download stage error, got %v", err)
	}
	if res.Successful != 0 || res.Failed != 2 || len(res.Errors) != 2 {
		t.Fatalf("expected a reason for both clips, got %+v", res)
	}
	want := []struct{ name, stage string }{
		{"broken", types.StageValidate},
		{"ok", types.StageDownload},
	}
	for i, w := range want {
		if e := res.Errors[i]; e.Name != w.name || e.Stage != w.stage {
			t.Fatalf("error %d: got %+v, want %s/%s", i, e, w.name, w.stage)
		}
	}
	if !strings.Contains(res.Errors[1].Message, "boom") {
		t.Fatalf("download reason lost: %q", res.Errors[1].Message)
	}
}

func TestExtractClips_CanceledSkipsUploads(t *testing.T) {
	h := newHarness(t)
	uc := h.usecase(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := uc.ExtractClips(ctx, "https://v/1", threeClips(), DefaultExtractOptions())
	if err != nil {
		t.Fatalf("ExtractClips: %v", err)
	}
	if res.Successful != 0 || res.Failed != 3 {
		t.Fatalf("expected every upload skipped, got %+v", res)
	}
	if len(h.storage.uploads) != 0 {
		t.Fatalf("expected no uploads, got %v", h.storage.uploads)
	}
	assertWorkDirEmpty(t, h.workDir)
}

func TestCoveringRange(t *testing.T) {
	jobs := []*clipJob{{start: 0, end: 15}, {start: 60, end: 90}, {start: 200, end: 220}}
	start, end := coveringRange(jobs)
	if start != 0 || end != 225 {
		t.Fatalf("got [%v, %v] want [0, 225]", start, end)
	}
	start, end = coveringRange([]*clipJob{{start: 42.5, end: 50}})
	if math.Abs(start-37.5) > 1e-9 || end != 55 {
		t.Fatalf("got [%v, %v] want [37.5, 55]", start, end)
	}
}
