package outbound

import "context"

type SwapVoiceRequest struct {
	AudioBytes     []byte
	VoiceProfileID string
}

// VoiceSwapperPort re-synthesizes the given audio in the cloned voice.
// Synchronous from the caller's perspective.
type VoiceSwapperPort interface {
	Swap(ctx context.Context, req SwapVoiceRequest) ([]byte, error)
}
