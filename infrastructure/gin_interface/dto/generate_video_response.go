package dto

import (
	"errors"
	"generate-avatar-video/domain"
)

type GenerateVideoResponse struct {
	JobID             string        `json:"job_id"`
	OutputPath        string        `json:"output_path"`
	VoiceProfileID    string        `json:"voice_profile_id"`
	SkippedGeneration bool          `json:"skipped_generation"`
	DurationSec       float64       `json:"duration_sec"`
	Timing            domain.Timing `json:"timing"`
	VideoKey          string        `json:"video_key,omitempty"`
	VideoRegion       string        `json:"video_region,omitempty"`
}

// FailureResponse is the single structured error a failed job surfaces to
// the caller.
type FailureResponse struct {
	FailingStage string `json:"failing_stage,omitempty"`
	ErrorKind    string `json:"error_kind"`
	Diagnostic   string `json:"diagnostic"`
}

func NewFailureResponse(err error) FailureResponse {
	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		return FailureResponse{
			FailingStage: string(pe.Stage),
			ErrorKind:    string(pe.Kind),
			Diagnostic:   pe.Err.Error(),
		}
	}

	var ke *domain.KindError
	if errors.As(err, &ke) {
		return FailureResponse{
			ErrorKind:  string(ke.Kind),
			Diagnostic: ke.Err.Error(),
		}
	}

	return FailureResponse{
		ErrorKind:  "Internal",
		Diagnostic: err.Error(),
	}
}
