package domain

// AspectRatio classifies the source image orientation so the generation
// request matches it and the result is not letterboxed.
type AspectRatio string

const (
	LandscapeAspectRatio AspectRatio = "landscape"
	PortraitAspectRatio  AspectRatio = "portrait"
)

// ClassifyAspectRatio maps image dimensions to an orientation. A square
// image counts as portrait ("not greater than").
func ClassifyAspectRatio(width, height int) AspectRatio {
	if width > height {
		return LandscapeAspectRatio
	}
	return PortraitAspectRatio
}

type Stage string

const (
	VoiceTrainingStage        Stage = "voice-training"
	VideoGenerationStage      Stage = "video-generation"
	DownloadVerificationStage Stage = "download-verification"
	AudioExtractionStage      Stage = "audio-extraction"
	VoiceSwapStage            Stage = "voice-swap"
	MediaCombineStage         Stage = "media-combine"
)

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// Job is one pipeline invocation. The byte fields are caller-supplied input;
// path fields are filled in by stages as artifacts materialize inside the
// job's private working directory.
type Job struct {
	ID          string
	ImageBytes  []byte
	AudioBytes  []byte
	Prompt      string
	VideoBytes  []byte // optional pre-rendered video, enables bypass mode
	BypassVideo bool

	WorkDir        string
	AspectRatio    AspectRatio
	VoiceProfileID string

	ImagePath         string
	VideoPath         string
	ExtractedAudio    string
	SwappedAudio      string
	OutputPath        string
	OutputDurationSec float64

	Timing   Timing
	Statuses map[Stage]StageStatus
}

// Timing is the per-stage elapsed-time breakdown, all in milliseconds.
type Timing struct {
	TrainingMs   int64 `json:"training_ms"`
	GenerationMs int64 `json:"generation_ms"`
	PollCount    int   `json:"poll_count"`
	SwapMs       int64 `json:"swap_ms"`
	CombineMs    int64 `json:"combine_ms"`
	TotalMs      int64 `json:"total_ms"`
}

// OperationHandle identifies an in-progress external video generation task.
type OperationHandle struct {
	Name string
}

// OperationStatus is one non-blocking status observation. ResultRef stays
// empty until the external service has attached the result payload, which
// can lag Done by one fetch.
type OperationStatus struct {
	Done      bool
	ResultRef string
}

// FileMeta describes an artifact that passed the stability check.
type FileMeta struct {
	Path string
	Size int64
}

// StageEvent is a progress notification emitted while a job runs.
type StageEvent struct {
	JobID     string      `json:"job_id"`
	Stage     Stage       `json:"stage"`
	Status    StageStatus `json:"status"`
	ElapsedMs int64       `json:"elapsed_ms"`
}
