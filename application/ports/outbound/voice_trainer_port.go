package outbound

import "context"

type TrainVoiceRequest struct {
	AudioBytes []byte
	Label      string
}

// VoiceTrainerPort submits a voice sample for cloning. The call blocks until
// the external service returns a profile id; there is no polling phase.
type VoiceTrainerPort interface {
	Train(ctx context.Context, req TrainVoiceRequest) (string, error)
}
