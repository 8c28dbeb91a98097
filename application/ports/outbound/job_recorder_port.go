package outbound

import (
	"context"
	"generate-avatar-video/domain"
)

type JobRecord struct {
	JobID             string
	UserID            string
	Succeeded         bool
	FailedStage       domain.Stage
	VoiceProfileID    string
	SkippedGeneration bool
	Timing            domain.Timing
}

type JobRecorderPort interface {
	Record(ctx context.Context, record JobRecord) error
}
