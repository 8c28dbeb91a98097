package mock_generator

import (
	"bytes"
	"context"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/domain"
	"github.com/google/uuid"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Stub adapters let the whole pipeline run locally with no external services
// and no ffmpeg binary. Artifact contents are synthetic but flow through the
// real orchestrator, working directory, and stability checks.

type StubVoiceTrainer struct{}

func (StubVoiceTrainer) Train(_ context.Context, req outbound.TrainVoiceRequest) (string, error) {
	if len(req.AudioBytes) == 0 {
		return "", domain.NewKindError(domain.TrainingFailed, "empty voice sample")
	}
	return "stub-voice-" + uuid.NewString(), nil
}

// StubVideoGenerator completes each operation after PollsUntilDone polls and
// materializes a synthetic video file on Download. One instance serves the
// whole mock route, so poll counts are tracked per operation under a lock.
type StubVideoGenerator struct {
	PollsUntilDone int

	mu    sync.Mutex
	polls map[string]int
}

func (g *StubVideoGenerator) Generate(_ context.Context, _ outbound.GenerateVideoRequest) (domain.OperationHandle, error) {
	return domain.OperationHandle{Name: "stub-op-" + uuid.NewString()}, nil
}

func (g *StubVideoGenerator) Poll(_ context.Context, handle domain.OperationHandle) (domain.OperationStatus, error) {
	g.mu.Lock()
	if g.polls == nil {
		g.polls = make(map[string]int)
	}
	g.polls[handle.Name]++
	done := g.polls[handle.Name] >= g.PollsUntilDone
	g.mu.Unlock()

	if !done {
		return domain.OperationStatus{}, nil
	}
	return domain.OperationStatus{Done: true, ResultRef: "stub-result/" + handle.Name}, nil
}

func (g *StubVideoGenerator) Download(_ context.Context, resultRef string, destPath string) error {
	payload := bytes.Repeat([]byte(resultRef+"\n"), 64)
	return os.WriteFile(destPath, payload, 0o644)
}

type StubVoiceSwapper struct{}

func (StubVoiceSwapper) Swap(_ context.Context, req outbound.SwapVoiceRequest) ([]byte, error) {
	if req.VoiceProfileID == "" {
		return nil, domain.NewKindError(domain.SwapFailed, "invalid voice profile id")
	}
	swapped := append([]byte("swapped:"+req.VoiceProfileID+":"), req.AudioBytes...)
	return swapped, nil
}

// StubMediaProcessor fakes the local media tool with plain file writes.
type StubMediaProcessor struct {
	OutputDir string
}

func (m StubMediaProcessor) ExtractAudio(videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, ".mp4") + "-audio.mp3"
	videoBytes, err := os.ReadFile(videoPath)
	if err != nil {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "reading video: %v", err)
	}
	if err := os.WriteFile(audioPath, append([]byte("audio-of:"), videoBytes...), 0o644); err != nil {
		return "", err
	}
	return audioPath, nil
}

func (m StubMediaProcessor) Combine(videoPath string, audioPath string) (string, error) {
	videoBytes, err := os.ReadFile(videoPath)
	if err != nil {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "reading video: %v", err)
	}
	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return "", domain.NewKindError(domain.MediaProcessingFailed, "reading audio: %v", err)
	}

	outputPath := filepath.Join(m.OutputDir, uuid.NewString()+".mp4")
	combined := append(videoBytes, audioBytes...)
	if err := os.WriteFile(outputPath, combined, 0o644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (m StubMediaProcessor) DetectAspectRatio(string) (domain.AspectRatio, error) {
	return domain.PortraitAspectRatio, nil
}

func (m StubMediaProcessor) ProbeDuration(string) (float64, error) {
	return 10, nil
}
