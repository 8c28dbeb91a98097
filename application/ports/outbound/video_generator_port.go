package outbound

import (
	"context"
	"generate-avatar-video/domain"
)

type GenerateVideoRequest struct {
	ImageBytes  []byte
	Prompt      string
	AspectRatio domain.AspectRatio
}

// VideoGeneratorPort wraps the long-running image-to-video service. Generate
// returns immediately with an operation handle; the caller owns the polling
// loop. Poll is a single non-blocking status check. Download fetches a
// finished result into destPath.
type VideoGeneratorPort interface {
	Generate(ctx context.Context, req GenerateVideoRequest) (domain.OperationHandle, error)
	Poll(ctx context.Context, handle domain.OperationHandle) (domain.OperationStatus, error)
	Download(ctx context.Context, resultRef string, destPath string) error
}
