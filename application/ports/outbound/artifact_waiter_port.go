package outbound

import (
	"context"
	"generate-avatar-video/domain"
)

type StabilityOptions struct {
	MaxAttempts          int
	Interval             int // milliseconds between polls
	RequiredStableChecks int
	SettleDelay          int // milliseconds to wait after stability
}

// ArtifactWaiterPort blocks until a file written asynchronously by an
// external download or local tool is safe for a strict media parser to read.
type ArtifactWaiterPort interface {
	AwaitStable(ctx context.Context, path string, opts StabilityOptions) (domain.FileMeta, error)
}
