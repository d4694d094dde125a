package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/forPelevin/vodclip/internal/storage"
	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/forPelevin/vodclip/internal/types"
)

// coverPad is the lead-in/lead-out added around the covering download range.
const coverPad = 5.0

type ExtractOptions struct {
	Quality         string `json:"quality" validate:"oneof=best 1080 720 480 360"`
	ParallelUploads bool   `json:"parallelUploads"`
}

func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Quality: "720", ParallelUploads: true}
}

// clipJob is one validated clip request carried through trim and upload.
type clipJob struct {
	index int
	name  string
	spec  types.ClipExtractionSpec
	start float64
	end   float64
	path  string
}

type clipOutcome struct {
	clip *types.ExtractedClip
	err  *types.ClipError
}

// ExtractClips downloads the range covering every requested clip once, cuts
// each clip out with a stream copy and uploads the results. A failing clip
// never stops the others; the returned error is reserved for failures that
// affect the whole batch.
func (u Usecase) ExtractClips(ctx context.Context, locator string, clips []types.ClipExtractionSpec, opts ExtractOptions) (types.ExtractClipsResult, error) {
	if len(clips) == 0 {
		return types.ExtractClipsResult{}, types.ErrNoClips
	}
	if err := u.validate.Struct(opts); err != nil {
		return types.ExtractClipsResult{}, types.NewStageError(types.StageValidate, fmt.Errorf("extract options: %s", formatValidation(err)))
	}

	outcomes := make([]clipOutcome, len(clips))
	jobs := u.parseJobs(clips, outcomes)
	if len(jobs) == 0 {
		return collect(outcomes), fmt.Errorf("%w: all %d clip specs are invalid", types.ErrNoClips, len(clips))
	}

	minStart, maxEnd := coveringRange(jobs)
	log := u.d.Logger.With().Str("locator", locator).Logger()
	log.Info().
		Int("clips", len(jobs)).
		Float64("range_start", minStart).
		Float64("range_end", maxEnd).
		Msg("extracting clips")

	dir, err := newRunDir(u.d.WorkDir, "extract", u.d.Now())
	if err != nil {
		return failBatch(jobs, outcomes, err)
	}
	defer removeRunDir(u.d.Logger, dir)

	src, err := u.d.Source.DownloadRange(ctx, locator, opts.Quality, minStart, maxEnd, dir)
	if err != nil {
		return failBatch(jobs, outcomes, err)
	}

	var trimmed []*clipJob
	for _, j := range jobs {
		out := filepath.Join(dir, fmt.Sprintf("%02d-%s.mp4", j.index+1, fileStem(j.name)))
		p, err := u.d.Trimmer.TrimStreamCopy(ctx, src, j.start-minStart, j.end-j.start, out)
		if err != nil {
			log.Warn().Err(err).Str("clip", j.name).Msg("trim failed")
			outcomes[j.index].err = clipError(j.name, types.StageTrim, err)
			continue
		}
		j.path = p
		trimmed = append(trimmed, j)
	}

	folder := storage.DateFolderKey(u.d.Now())
	upload := func(j *clipJob) {
		outcomes[j.index] = u.upload(ctx, j, folder)
	}
	if opts.ParallelUploads {
		var wg sync.WaitGroup
		for _, j := range trimmed {
			wg.Add(1)
			go func(j *clipJob) {
				defer wg.Done()
				upload(j)
			}(j)
		}
		wg.Wait()
	} else {
		for _, j := range trimmed {
			upload(j)
		}
	}

	res := collect(outcomes)
	log.Info().Int("successful", res.Successful).Int("failed", res.Failed).Msg("extraction complete")
	return res, nil
}

func (u Usecase) parseJobs(clips []types.ClipExtractionSpec, outcomes []clipOutcome) []*clipJob {
	var jobs []*clipJob
	for i, c := range clips {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("clip-%02d", i+1)
		}
		if err := u.validate.Struct(c); err != nil {
			outcomes[i].err = &types.ClipError{Name: name, Stage: types.StageValidate, Message: formatValidation(err)}
			continue
		}
		start, _ := timecode.Parse(c.StartTime)
		end, _ := timecode.Parse(c.EndTime)
		if end <= start {
			outcomes[i].err = clipError(name, types.StageValidate,
				fmt.Errorf("%w: end %s is not after start %s", types.ErrInvalidRange, c.EndTime, c.StartTime))
			continue
		}
		jobs = append(jobs, &clipJob{index: i, name: name, spec: c, start: start, end: end})
	}
	return jobs
}

func (u Usecase) upload(ctx context.Context, j *clipJob, folder string) clipOutcome {
	if err := ctx.Err(); err != nil {
		return clipOutcome{err: clipError(j.name, types.StageUpload, fmt.Errorf("skipped: %w", err))}
	}
	res, err := u.d.Storage.Upload(ctx, j.path, j.name+".mp4", folder)
	if err != nil {
		u.d.Logger.Warn().Err(err).Str("clip", j.name).Msg("upload failed")
		return clipOutcome{err: clipError(j.name, types.StageUpload, err)}
	}
	return clipOutcome{clip: &types.ExtractedClip{
		Name:          j.name,
		StartTime:     j.spec.StartTime,
		EndTime:       j.spec.EndTime,
		Duration:      j.end - j.start,
		StorageID:     res.StorageID,
		StorageURL:    res.StorageURL,
		StorageFolder: folder,
	}}
}

// coveringRange is the single span that contains every clip plus padding,
// floored at zero.
func coveringRange(jobs []*clipJob) (float64, float64) {
	minStart, maxEnd := math.Inf(1), math.Inf(-1)
	for _, j := range jobs {
		minStart = math.Min(minStart, j.start)
		maxEnd = math.Max(maxEnd, j.end)
	}
	return math.Max(0, minStart-coverPad), maxEnd + coverPad
}

// failBatch records err against every job that was still pending, so the
// result carries a reason for each requested clip alongside the stage error.
func failBatch(jobs []*clipJob, outcomes []clipOutcome, err error) (types.ExtractClipsResult, error) {
	err = types.NewStageError(types.StageDownload, err)
	for _, j := range jobs {
		outcomes[j.index].err = clipError(j.name, types.StageDownload, err)
	}
	return collect(outcomes), err
}

// collect flattens outcomes in request order.
func collect(outcomes []clipOutcome) types.ExtractClipsResult {
	res := types.ExtractClipsResult{
		Clips:  []types.ExtractedClip{},
		Errors: []types.ClipError{},
	}
	for _, o := range outcomes {
		switch {
		case o.clip != nil:
			res.Clips = append(res.Clips, *o.clip)
		case o.err != nil:
			res.Errors = append(res.Errors, *o.err)
		}
	}
	res.Successful = len(res.Clips)
	res.Failed = len(res.Errors)
	return res
}

func clipError(name, stage string, err error) *types.ClipError {
	var se *types.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	return &types.ClipError{Name: name, Stage: stage, Message: err.Error()}
}

func fileStem(name string) string {
	if s := normalizePathSegment(name); s != "" {
		return s
	}
	return "clip"
}
