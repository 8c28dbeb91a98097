package inbound

import (
	"context"
	"generate-avatar-video/domain"
)

type RunJobParams struct {
	ImageBytes []byte
	AudioBytes []byte
	Prompt     string
	VideoBytes []byte // optional pre-rendered video; skips generation
	UserID     string

	// Events receives per-stage progress notifications when non-nil. The
	// channel is closed by the pipeline when the job terminates.
	Events chan<- domain.StageEvent
}

type JobResult struct {
	JobID             string        `json:"job_id"`
	OutputPath        string        `json:"output_path"`
	VoiceProfileID    string        `json:"voice_profile_id"`
	SkippedGeneration bool          `json:"skipped_generation"`
	DurationSec       float64       `json:"duration_sec"`
	Timing            domain.Timing `json:"timing"`
	VideoKey          string        `json:"video_key,omitempty"`
	VideoRegion       string        `json:"video_region,omitempty"`
}

type GenerationPipelinePort interface {
	Run(ctx context.Context, params RunJobParams) (*JobResult, error)
}
