package services_test

import (
	"context"
	"errors"
	"generate-avatar-video/application/ports/inbound"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/application/services"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"generate-avatar-video/infrastructure/adapters"
	mockgenerator "generate-avatar-video/mock"
	"os"
	"strings"
	"testing"
	"time"
)

func fastPipelineConfig(t *testing.T) *config.PipelineConfig {
	t.Helper()
	return &config.PipelineConfig{
		WorkRoot:           t.TempDir(),
		DefaultPrompt:      "a person speaking naturally to the camera",
		OperationPollEvery: time.Millisecond,
		StablePollEvery:    5 * time.Millisecond,
		StableMaxAttempts:  100,
		StableChecks:       3,
		SettleDelay:        time.Millisecond,
	}
}

// failingTrainer rejects every sample.
type failingTrainer struct{}

func (failingTrainer) Train(context.Context, outbound.TrainVoiceRequest) (string, error) {
	return "", domain.NewKindError(domain.TrainingFailed, "audio sample too short")
}

// spyGenerator fails the test if any of its methods are reached.
type spyGenerator struct {
	t *testing.T
}

func (s spyGenerator) Generate(context.Context, outbound.GenerateVideoRequest) (domain.OperationHandle, error) {
	s.t.Fatal("video generator must not be invoked")
	return domain.OperationHandle{}, nil
}

func (s spyGenerator) Poll(context.Context, domain.OperationHandle) (domain.OperationStatus, error) {
	s.t.Fatal("video generator must not be polled")
	return domain.OperationStatus{}, nil
}

func (s spyGenerator) Download(context.Context, string, string) error {
	s.t.Fatal("video generator must not download")
	return nil
}

// scriptedGenerator returns canned poll statuses in order and records the
// prompt and result reference it saw.
type scriptedGenerator struct {
	statuses    []domain.OperationStatus
	pollCalls   int
	seenPrompt  string
	downloadRef string
}

func (g *scriptedGenerator) Generate(_ context.Context, req outbound.GenerateVideoRequest) (domain.OperationHandle, error) {
	g.seenPrompt = req.Prompt
	return domain.OperationHandle{Name: "op-test"}, nil
}

func (g *scriptedGenerator) Poll(context.Context, domain.OperationHandle) (domain.OperationStatus, error) {
	status := g.statuses[g.pollCalls]
	if g.pollCalls < len(g.statuses)-1 {
		g.pollCalls++
	}
	return status, nil
}

func (g *scriptedGenerator) Download(_ context.Context, resultRef string, destPath string) error {
	g.downloadRef = resultRef
	return os.WriteFile(destPath, []byte("generated video payload"), 0o644)
}

// timeoutWaiter simulates an artifact stuck at a partial size for paths with
// the given suffix and delegates everything else to a real waiter.
type timeoutWaiter struct {
	inner      outbound.ArtifactWaiterPort
	failSuffix string
}

func (w timeoutWaiter) AwaitStable(ctx context.Context, path string, opts outbound.StabilityOptions) (domain.FileMeta, error) {
	if strings.HasSuffix(path, w.failSuffix) {
		return domain.FileMeta{}, domain.NewKindError(domain.Timeout, "file %s appeared but never stabilized (last size 512)", path)
	}
	return w.inner.AwaitStable(ctx, path, opts)
}

func newTestPipeline(t *testing.T, cfg *config.PipelineConfig, generator outbound.VideoGeneratorPort,
	trainer outbound.VoiceTrainerPort, waiter outbound.ArtifactWaiterPort) inbound.GenerationPipelinePort {
	t.Helper()
	logger := adapters.NewZerologWrapper()
	if waiter == nil {
		waiter = adapters.NewFileStabilityWaiter(logger)
	}
	return services.NewGenerationPipeline(
		logger,
		trainer,
		generator,
		mockgenerator.StubVoiceSwapper{},
		mockgenerator.StubMediaProcessor{OutputDir: t.TempDir()},
		waiter,
		nil,
		nil,
		cfg,
	)
}

func assertWorkRootEmpty(t *testing.T, workRoot string) {
	t.Helper()
	entries, err := os.ReadDir(workRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected work root cleaned up, found %d entries", len(entries))
	}
}

func TestRun_BypassVideoSkipsGeneration(t *testing.T) {
	cfg := fastPipelineConfig(t)
	pipeline := newTestPipeline(t, cfg, spyGenerator{t: t}, mockgenerator.StubVoiceTrainer{}, nil)

	res, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		AudioBytes: []byte("ten second voice sample"),
		VideoBytes: []byte("pre-rendered video of known duration"),
	})
	if err != nil {
		t.Fatal("expected success, got:", err)
	}

	if !res.SkippedGeneration {
		t.Fatal("expected skipped_generation=true")
	}
	if res.Timing.GenerationMs != 0 {
		t.Fatalf("expected generationMs=0, got %d", res.Timing.GenerationMs)
	}
	if res.Timing.PollCount != 0 {
		t.Fatalf("expected no polls, got %d", res.Timing.PollCount)
	}
	if res.VoiceProfileID == "" {
		t.Fatal("expected a voice profile id")
	}

	info, err := os.Stat(res.OutputPath)
	if err != nil {
		t.Fatal("output file missing:", err)
	}
	if info.Size() == 0 {
		t.Fatal("output file is empty")
	}

	assertWorkRootEmpty(t, cfg.WorkRoot)
}

func TestRun_TrainingFailureAbortsBeforeGeneration(t *testing.T) {
	cfg := fastPipelineConfig(t)
	pipeline := newTestPipeline(t, cfg, spyGenerator{t: t}, failingTrainer{}, nil)

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
		AudioBytes: []byte("sample"),
	})
	if err == nil {
		t.Fatal("expected failure")
	}

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("expected a PipelineError, got:", err)
	}
	if pe.Stage != domain.VoiceTrainingStage {
		t.Fatalf("expected failing stage voice-training, got %s", pe.Stage)
	}
	if pe.Kind != domain.TrainingFailed {
		t.Fatalf("expected TrainingFailed, got %s", pe.Kind)
	}

	assertWorkRootEmpty(t, cfg.WorkRoot)
}

func TestRun_ResultAbsentOnFirstFetchRecoversOnRefetch(t *testing.T) {
	cfg := fastPipelineConfig(t)
	generator := &scriptedGenerator{
		statuses: []domain.OperationStatus{
			{Done: false},
			{Done: true},                                      // done, result not yet attached
			{Done: true, ResultRef: "files/op-test/video.mp4"}, // re-fetch
		},
	}
	pipeline := newTestPipeline(t, cfg, generator, mockgenerator.StubVoiceTrainer{}, nil)

	res, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
		AudioBytes: []byte("sample"),
		Prompt:     "wave at the camera",
	})
	if err != nil {
		t.Fatal("expected recovery via single re-fetch, got:", err)
	}

	if generator.downloadRef != "files/op-test/video.mp4" {
		t.Fatalf("expected download of re-fetched result, got %q", generator.downloadRef)
	}
	if res.Timing.PollCount != 2 {
		t.Fatalf("expected 2 loop polls, got %d", res.Timing.PollCount)
	}
	if res.SkippedGeneration {
		t.Fatal("generation was not bypassed")
	}
}

func TestRun_ResultStillAbsentAfterRefetchFails(t *testing.T) {
	cfg := fastPipelineConfig(t)
	generator := &scriptedGenerator{
		statuses: []domain.OperationStatus{
			{Done: true},
			{Done: true}, // still no result on re-fetch
		},
	}
	pipeline := newTestPipeline(t, cfg, generator, mockgenerator.StubVoiceTrainer{}, nil)

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
		AudioBytes: []byte("sample"),
	})

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("expected a PipelineError, got:", err)
	}
	if pe.Stage != domain.VideoGenerationStage {
		t.Fatalf("expected failing stage video-generation, got %s", pe.Stage)
	}
	if pe.Kind != domain.ResultUnavailable {
		t.Fatalf("expected ResultUnavailable, got %s", pe.Kind)
	}
}

func TestRun_DownloadNeverStabilizesFailsWithTimeout(t *testing.T) {
	cfg := fastPipelineConfig(t)
	generator := &scriptedGenerator{
		statuses: []domain.OperationStatus{
			{Done: true, ResultRef: "files/op-test/video.mp4"},
		},
	}
	logger := adapters.NewZerologWrapper()
	waiter := timeoutWaiter{
		inner:      adapters.NewFileStabilityWaiter(logger),
		failSuffix: "generated.mp4",
	}
	pipeline := newTestPipeline(t, cfg, generator, mockgenerator.StubVoiceTrainer{}, waiter)

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
		AudioBytes: []byte("sample"),
	})

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("expected a PipelineError, got:", err)
	}
	if pe.Stage != domain.DownloadVerificationStage {
		t.Fatalf("expected failing stage download-verification, got %s", pe.Stage)
	}
	if pe.Kind != domain.Timeout {
		t.Fatalf("expected Timeout, got %s", pe.Kind)
	}

	// The partial download is removed along with the working directory.
	assertWorkRootEmpty(t, cfg.WorkRoot)
}

func TestRun_EmptyPromptUsesDefault(t *testing.T) {
	cfg := fastPipelineConfig(t)
	generator := &scriptedGenerator{
		statuses: []domain.OperationStatus{
			{Done: true, ResultRef: "files/op-test/video.mp4"},
		},
	}
	pipeline := newTestPipeline(t, cfg, generator, mockgenerator.StubVoiceTrainer{}, nil)

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
		AudioBytes: []byte("sample"),
	})
	if err != nil {
		t.Fatal("expected success, got:", err)
	}
	if generator.seenPrompt != cfg.DefaultPrompt {
		t.Fatalf("expected default prompt %q, got %q", cfg.DefaultPrompt, generator.seenPrompt)
	}
}

func TestRun_MissingAudioIsInvalidInput(t *testing.T) {
	cfg := fastPipelineConfig(t)
	pipeline := newTestPipeline(t, cfg, spyGenerator{t: t}, mockgenerator.StubVoiceTrainer{}, nil)

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		ImageBytes: []byte("jpeg"),
	})
	if kind := domain.KindOf(err, ""); kind != domain.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestRun_RetainFlagKeepsWorkDir(t *testing.T) {
	cfg := fastPipelineConfig(t)
	cfg.RetainWorkDir = true
	pipeline := newTestPipeline(t, cfg, spyGenerator{t: t}, mockgenerator.StubVoiceTrainer{}, nil)

	res, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		AudioBytes: []byte("sample"),
		VideoBytes: []byte("pre-rendered video"),
	})
	if err != nil {
		t.Fatal("expected success, got:", err)
	}

	entries, err := os.ReadDir(cfg.WorkRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != res.JobID {
		t.Fatal("expected retained working directory named after the job")
	}
}

func TestRun_EmitsOrderedStageEvents(t *testing.T) {
	cfg := fastPipelineConfig(t)
	pipeline := newTestPipeline(t, cfg, spyGenerator{t: t}, mockgenerator.StubVoiceTrainer{}, nil)

	events := make(chan domain.StageEvent, 32)
	done := make(chan struct{})
	var collected []domain.StageEvent
	go func() {
		defer close(done)
		for ev := range events {
			collected = append(collected, ev)
		}
	}()

	_, err := pipeline.Run(context.Background(), inbound.RunJobParams{
		AudioBytes: []byte("sample"),
		VideoBytes: []byte("pre-rendered video"),
		Events:     events,
	})
	if err != nil {
		t.Fatal("expected success, got:", err)
	}
	<-done

	if len(collected) == 0 {
		t.Fatal("expected stage events")
	}
	first := collected[0]
	if first.Stage != domain.VoiceTrainingStage || first.Status != domain.StageRunning {
		t.Fatalf("expected first event voice-training/running, got %+v", first)
	}
	last := collected[len(collected)-1]
	if last.Stage != domain.MediaCombineStage || last.Status != domain.StageCompleted {
		t.Fatalf("expected last event media-combine/completed, got %+v", last)
	}

	var generationStatus domain.StageStatus
	for _, ev := range collected {
		if ev.Stage == domain.VideoGenerationStage && ev.Status != domain.StageRunning {
			generationStatus = ev.Status
		}
	}
	if generationStatus != domain.StageSkipped {
		t.Fatalf("expected generation stage reported as skipped, got %s", generationStatus)
	}
}
