package services

import (
	"context"
	"errors"
	"fmt"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/domain"
	"generate-avatar-video/poll_utils"
	"os"
	"path/filepath"
	"time"
)

func (p *generationPipeline) trainVoice(ctx context.Context, job *domain.Job) error {
	start := time.Now()
	profileID, err := p.voiceTrainer.Train(ctx, outbound.TrainVoiceRequest{
		AudioBytes: job.AudioBytes,
		Label:      "job-" + job.ID,
	})
	job.Timing.TrainingMs = time.Since(start).Milliseconds()
	if err != nil {
		return err
	}

	job.VoiceProfileID = profileID
	p.logger.InfoWithFields("voice profile trained", map[string]interface{}{
		"jobID":     job.ID,
		"profileID": profileID,
	})
	return nil
}

func (p *generationPipeline) generateVideo(ctx context.Context, job *domain.Job) error {
	if job.BypassVideo {
		job.VideoPath = filepath.Join(job.WorkDir, "source.mp4")
		if err := os.WriteFile(job.VideoPath, job.VideoBytes, 0o644); err != nil {
			return err
		}
		job.Timing.GenerationMs = 0
		job.Statuses[domain.VideoGenerationStage] = domain.StageSkipped
		p.logger.InfoWithFields("bypass video supplied, skipping generation", map[string]interface{}{
			"jobID": job.ID,
		})
		return nil
	}

	start := time.Now()

	job.ImagePath = filepath.Join(job.WorkDir, "source.jpg")
	if err := os.WriteFile(job.ImagePath, job.ImageBytes, 0o644); err != nil {
		return err
	}

	aspectRatio, err := p.mediaProcessor.DetectAspectRatio(job.ImagePath)
	if err != nil {
		return err
	}
	job.AspectRatio = aspectRatio

	handle, err := p.videoGenerator.Generate(ctx, outbound.GenerateVideoRequest{
		ImageBytes:  job.ImageBytes,
		Prompt:      job.Prompt,
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return err
	}

	status, err := p.pollOperation(ctx, job, handle)
	if err != nil {
		return err
	}

	job.VideoPath = filepath.Join(job.WorkDir, "generated.mp4")
	if err := p.videoGenerator.Download(ctx, status.ResultRef, job.VideoPath); err != nil {
		return err
	}

	job.Timing.GenerationMs = time.Since(start).Milliseconds()
	return nil
}

// pollOperation drives the fixed-interval status loop. Completion time is
// controlled entirely by the external service's load, so a plain fixed
// interval keeps latency predictable; the only upper bound is the caller's
// context deadline.
func (p *generationPipeline) pollOperation(ctx context.Context, job *domain.Job, handle domain.OperationHandle) (domain.OperationStatus, error) {
	var last domain.OperationStatus
	err := poll_utils.Poll(ctx, p.pipelineConfig.OperationPollEvery, 0, func(attempt int) (bool, error) {
		status, err := p.videoGenerator.Poll(ctx, handle)
		if err != nil {
			return false, err
		}
		job.Timing.PollCount = attempt
		last = status
		return status.Done, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return last, domain.NewKindError(domain.Timeout, "generation operation %s did not complete: %v", handle.Name, err)
		}
		return last, err
	}

	// The result payload can lag the done flag by one fetch. One re-fetch
	// covers that race; anything beyond it is a real failure.
	if last.ResultRef == "" {
		p.logger.Warn(fmt.Sprintf("operation %s done without result, re-fetching once (job %s)", handle.Name, job.ID))
		refetched, err := p.videoGenerator.Poll(ctx, handle)
		if err != nil {
			return last, err
		}
		if refetched.ResultRef == "" {
			return last, domain.NewKindError(domain.ResultUnavailable,
				"operation %s reported done but carries no result after re-fetch", handle.Name)
		}
		last = refetched
	}

	return last, nil
}

func (p *generationPipeline) verifyDownload(ctx context.Context, job *domain.Job) error {
	meta, err := p.artifactWaiter.AwaitStable(ctx, job.VideoPath, p.stabilityOptions())
	if err != nil {
		return err
	}
	p.logger.DebugWithFields("source video stable", map[string]interface{}{
		"jobID": job.ID,
		"path":  meta.Path,
		"size":  meta.Size,
	})
	return nil
}

func (p *generationPipeline) extractAudio(ctx context.Context, job *domain.Job) error {
	audioPath, err := p.mediaProcessor.ExtractAudio(job.VideoPath)
	if err != nil {
		return err
	}
	job.ExtractedAudio = audioPath
	return nil
}

func (p *generationPipeline) swapVoice(ctx context.Context, job *domain.Job) error {
	audioBytes, err := os.ReadFile(job.ExtractedAudio)
	if err != nil {
		return err
	}

	start := time.Now()
	swapped, err := p.voiceSwapper.Swap(ctx, outbound.SwapVoiceRequest{
		AudioBytes:     audioBytes,
		VoiceProfileID: job.VoiceProfileID,
	})
	job.Timing.SwapMs = time.Since(start).Milliseconds()
	if err != nil {
		return err
	}

	job.SwappedAudio = filepath.Join(job.WorkDir, "swapped-audio.mp3")
	if err := os.WriteFile(job.SwappedAudio, swapped, 0o644); err != nil {
		return err
	}

	_, err = p.artifactWaiter.AwaitStable(ctx, job.SwappedAudio, p.stabilityOptions())
	return err
}

func (p *generationPipeline) combineMedia(ctx context.Context, job *domain.Job) error {
	start := time.Now()
	outputPath, err := p.mediaProcessor.Combine(job.VideoPath, job.SwappedAudio)
	if err != nil {
		return err
	}
	job.OutputPath = outputPath

	if _, err := p.artifactWaiter.AwaitStable(ctx, outputPath, p.stabilityOptions()); err != nil {
		return err
	}
	job.Timing.CombineMs = time.Since(start).Milliseconds()

	duration, err := p.mediaProcessor.ProbeDuration(outputPath)
	if err != nil {
		return fmt.Errorf("probing output duration: %w", err)
	}
	job.OutputDurationSec = duration
	return nil
}

func (p *generationPipeline) stabilityOptions() outbound.StabilityOptions {
	return outbound.StabilityOptions{
		MaxAttempts:          p.pipelineConfig.StableMaxAttempts,
		Interval:             int(p.pipelineConfig.StablePollEvery.Milliseconds()),
		RequiredStableChecks: p.pipelineConfig.StableChecks,
		SettleDelay:          int(p.pipelineConfig.SettleDelay.Milliseconds()),
	}
}
