package types

import "time"

// Transcript is the whisper.cpp JSON shape used by the local transcription fallback.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptSegment is one parsed span of spoken text. Times are seconds.
type TranscriptSegment struct {
	Text       string  `json:"text"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Confidence float64 `json:"confidence,omitempty"`
}

type SignalSource string

const (
	SourceTranscript SignalSource = "transcript"
	SourceMotion     SignalSource = "motion"
	SourceAudio      SignalSource = "audio"
)

// ScoredMoment is what every analyzer hands to fusion.
type ScoredMoment struct {
	StartTime float64      `json:"startTime"`
	EndTime   float64      `json:"endTime"`
	Score     float64      `json:"score"`
	Reason    string       `json:"reason"`
	Source    SignalSource `json:"source"`
}

type ActivityLevel string

const (
	ActivityHigh   ActivityLevel = "high"
	ActivityMedium ActivityLevel = "medium"
	ActivityLow    ActivityLevel = "low"
)

type MotionSegment struct {
	StartTime        float64       `json:"startTime"`
	EndTime          float64       `json:"endTime"`
	MotionScore      float64       `json:"motionScore"`
	ActivityLevel    ActivityLevel `json:"activityLevel"`
	SceneChangeCount int           `json:"sceneChangeCount"`
}

type ClipType string

const (
	ClipAhaMoment   ClipType = "aha_moment"
	ClipExplanation ClipType = "explanation"
	ClipBuildMoment ClipType = "build_moment"
	ClipDemo        ClipType = "demo"
)

type Signals struct {
	Transcript float64 `json:"transcript"`
	Motion     float64 `json:"motion"`
	Audio      float64 `json:"audio"`
}

// Sources counts the signal channels that contributed anything.
func (s Signals) Sources() int {
	n := 0
	for _, v := range []float64{s.Transcript, s.Motion, s.Audio} {
		if v != 0 {
			n++
		}
	}
	return n
}

func (s Signals) Add(o Signals) Signals {
	return Signals{
		Transcript: s.Transcript + o.Transcript,
		Motion:     s.Motion + o.Motion,
		Audio:      s.Audio + o.Audio,
	}
}

type DetectedHighlight struct {
	StartTime  float64  `json:"startTime"`
	EndTime    float64  `json:"endTime"`
	Duration   float64  `json:"duration"`
	TotalScore float64  `json:"totalScore"`
	Signals    Signals  `json:"signals"`
	ClipType   ClipType `json:"clipType"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
}

type Chapter struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

type VideoMetadata struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Channel         string    `json:"channel"`
	DurationSeconds float64   `json:"durationSeconds"`
	Chapters        []Chapter `json:"chapters,omitempty"`
}

// Analysis quality presets. They pick the resolution downloaded for motion analysis.
const (
	QualityFast     = "fast"
	QualityStandard = "standard"
	QualityThorough = "thorough"
)

type DetectOptions struct {
	MaxClips           int        `json:"maxClips" validate:"gte=1"`
	MinScore           float64    `json:"minScore" validate:"gte=0"`
	PreferredTypes     []ClipType `json:"preferredTypes,omitempty" validate:"dive,oneof=aha_moment explanation build_moment demo"`
	AnalysisQuality    string     `json:"analysisQuality" validate:"omitempty,oneof=fast standard thorough"`
	SkipMotionAnalysis bool       `json:"skipMotionAnalysis"`
}

func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		MaxClips:        10,
		MinScore:        3,
		AnalysisQuality: QualityStandard,
	}
}

type DetectionMetadata struct {
	VideoID             string        `json:"videoId"`
	Title               string        `json:"title"`
	DurationSeconds     float64       `json:"durationSeconds"`
	Requested           int           `json:"requested"`
	Found               int           `json:"found"`
	TranscriptAvailable bool          `json:"transcriptAvailable"`
	TranscriptMoments   int           `json:"transcriptMoments"`
	MotionMoments       int           `json:"motionMoments"`
	MotionSkipped       bool          `json:"motionSkipped"`
	Elapsed             time.Duration `json:"elapsed"`
}

type DetectHighlightsResult struct {
	Highlights []DetectedHighlight `json:"highlights"`
	Metadata   DetectionMetadata   `json:"metadata"`
}

// ClipExtractionSpec is one requested clip. Times accept SS, MM:SS or HH:MM:SS(.mmm).
type ClipExtractionSpec struct {
	StartTime string `json:"startTime" validate:"required,timecode"`
	EndTime   string `json:"endTime" validate:"required,timecode"`
	Name      string `json:"name,omitempty" validate:"omitempty,max=120"`
}

type ExtractedClip struct {
	Name          string  `json:"name"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Duration      float64 `json:"duration"`
	StorageID     string  `json:"storageId"`
	StorageURL    string  `json:"storageUrl"`
	StorageFolder string  `json:"storageFolder"`
}

// ClipError records why a single requested clip did not make it to storage.
type ClipError struct {
	Name    string `json:"name"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type ExtractClipsResult struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Clips      []ExtractedClip `json:"clips"`
	Errors     []ClipError     `json:"errors"`
}

type UploadResult struct {
	StorageID  string `json:"storageId"`
	StorageURL string `json:"storageUrl"`
}
