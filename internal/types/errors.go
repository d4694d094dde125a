package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoClips         = errors.New("no clips requested")
	ErrInvalidRange    = errors.New("invalid time range")
	ErrToolUnavailable = errors.New("external tool unavailable")
	ErrConfig          = errors.New("invalid configuration")
)

// Stages reported in StageError and ClipError.
const (
	StageValidate    = "validate"
	StageMetadata    = "metadata"
	StageDownload    = "download"
	StageSceneDetect = "scene-detect"
	StageTrim        = "trim"
	StageUpload      = "upload"
	StageTranscript  = "transcript"
)

// StageError ties an external-tool failure to the pipeline stage that ran it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
