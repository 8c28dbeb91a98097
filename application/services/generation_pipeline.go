package services

import (
	"context"
	"errors"
	"generate-avatar-video/application/ports/inbound"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"github.com/google/uuid"
	"os"
	"path/filepath"
	"time"
)

type pipelineStage struct {
	name domain.Stage
	// fallbackKind tags errors the stage did not classify itself.
	fallbackKind domain.ErrorKind
	run          func(ctx context.Context, job *domain.Job) error
}

type generationPipeline struct {
	logger         outbound.LoggerPort
	voiceTrainer   outbound.VoiceTrainerPort
	videoGenerator outbound.VideoGeneratorPort
	voiceSwapper   outbound.VoiceSwapperPort
	mediaProcessor outbound.MediaProcessorPort
	artifactWaiter outbound.ArtifactWaiterPort
	videoPublisher outbound.VideoPublisherPort
	jobRecorder    outbound.JobRecorderPort
	pipelineConfig *config.PipelineConfig
}

// NewGenerationPipeline wires the five pipeline stages. videoPublisher and
// jobRecorder are optional collaborators and may be nil.
func NewGenerationPipeline(
	logger outbound.LoggerPort,
	voiceTrainer outbound.VoiceTrainerPort,
	videoGenerator outbound.VideoGeneratorPort,
	voiceSwapper outbound.VoiceSwapperPort,
	mediaProcessor outbound.MediaProcessorPort,
	artifactWaiter outbound.ArtifactWaiterPort,
	videoPublisher outbound.VideoPublisherPort,
	jobRecorder outbound.JobRecorderPort,
	pipelineConfig *config.PipelineConfig) inbound.GenerationPipelinePort {
	return &generationPipeline{
		logger:         logger,
		voiceTrainer:   voiceTrainer,
		videoGenerator: videoGenerator,
		voiceSwapper:   voiceSwapper,
		mediaProcessor: mediaProcessor,
		artifactWaiter: artifactWaiter,
		videoPublisher: videoPublisher,
		jobRecorder:    jobRecorder,
		pipelineConfig: pipelineConfig,
	}
}

func (p *generationPipeline) Run(ctx context.Context, params inbound.RunJobParams) (*inbound.JobResult, error) {
	if params.Events != nil {
		defer close(params.Events)
	}

	job, err := p.newJob(params)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		p.logger.Error(err, "failed to create job working directory")
		return nil, err
	}
	defer p.cleanup(job)

	p.logger.InfoWithFields("starting generation job", map[string]interface{}{
		"jobID":  job.ID,
		"bypass": job.BypassVideo,
	})

	jobStart := time.Now()
	err = p.runStages(ctx, job, params.Events)
	job.Timing.TotalMs = time.Since(jobStart).Milliseconds()

	p.record(ctx, job, params.UserID, err)

	if err != nil {
		return nil, err
	}

	result := &inbound.JobResult{
		JobID:             job.ID,
		OutputPath:        job.OutputPath,
		VoiceProfileID:    job.VoiceProfileID,
		SkippedGeneration: job.BypassVideo,
		DurationSec:       job.OutputDurationSec,
		Timing:            job.Timing,
	}

	if p.videoPublisher != nil {
		published, err := p.videoPublisher.Publish(ctx, outbound.PublishVideoRequest{
			VideoFileName: job.OutputPath,
			JobID:         job.ID,
			UserID:        params.UserID,
		})
		if err != nil {
			p.logger.Error(err, "failed to publish output video")
			return nil, err
		}
		result.VideoKey = published.VideoKey
		result.VideoRegion = published.StoreRegion
	}

	p.logger.InfoWithFields("generation job finished", map[string]interface{}{
		"jobID":   job.ID,
		"totalMs": job.Timing.TotalMs,
		"output":  job.OutputPath,
	})

	return result, nil
}

func (p *generationPipeline) newJob(params inbound.RunJobParams) (*domain.Job, error) {
	if len(params.AudioBytes) == 0 {
		return nil, domain.NewKindError(domain.InvalidInput, "voice sample is required")
	}
	bypass := len(params.VideoBytes) > 0
	if !bypass && len(params.ImageBytes) == 0 {
		return nil, domain.NewKindError(domain.InvalidInput, "source image is required unless a pre-rendered video is supplied")
	}

	prompt := params.Prompt
	if prompt == "" {
		prompt = p.pipelineConfig.DefaultPrompt
	}

	jobID := uuid.NewString()
	return &domain.Job{
		ID:          jobID,
		ImageBytes:  params.ImageBytes,
		AudioBytes:  params.AudioBytes,
		Prompt:      prompt,
		VideoBytes:  params.VideoBytes,
		BypassVideo: bypass,
		WorkDir:     filepath.Join(p.pipelineConfig.WorkRoot, jobID),
		Statuses:    make(map[domain.Stage]domain.StageStatus),
	}, nil
}

func (p *generationPipeline) runStages(ctx context.Context, job *domain.Job, events chan<- domain.StageEvent) error {
	stages := []pipelineStage{
		{domain.VoiceTrainingStage, domain.TrainingFailed, p.trainVoice},
		{domain.VideoGenerationStage, domain.GenerationFailed, p.generateVideo},
		{domain.DownloadVerificationStage, domain.Timeout, p.verifyDownload},
		{domain.AudioExtractionStage, domain.MediaProcessingFailed, p.extractAudio},
		{domain.VoiceSwapStage, domain.SwapFailed, p.swapVoice},
		{domain.MediaCombineStage, domain.MediaProcessingFailed, p.combineMedia},
	}

	for _, stage := range stages {
		job.Statuses[stage.name] = domain.StageRunning
		p.emit(ctx, events, job, stage.name, domain.StageRunning, 0)

		start := time.Now()
		err := stage.run(ctx, job)
		elapsed := time.Since(start).Milliseconds()

		if err != nil {
			job.Statuses[stage.name] = domain.StageFailed
			p.emit(ctx, events, job, stage.name, domain.StageFailed, elapsed)
			p.logger.ErrorWithFields(err, "pipeline stage failed", map[string]interface{}{
				"jobID": job.ID,
				"stage": string(stage.name),
			})
			return &domain.PipelineError{
				Stage: stage.name,
				Kind:  domain.KindOf(err, stage.fallbackKind),
				Err:   err,
			}
		}

		status := job.Statuses[stage.name]
		if status != domain.StageSkipped {
			status = domain.StageCompleted
			job.Statuses[stage.name] = status
		}
		p.emit(ctx, events, job, stage.name, status, elapsed)
	}

	return nil
}

func (p *generationPipeline) emit(ctx context.Context, events chan<- domain.StageEvent, job *domain.Job,
	stage domain.Stage, status domain.StageStatus, elapsedMs int64) {
	if events == nil {
		return
	}
	select {
	case events <- domain.StageEvent{JobID: job.ID, Stage: stage, Status: status, ElapsedMs: elapsedMs}:
	case <-ctx.Done():
	}
}

// cleanup removes the job's private working directory. The final output is
// written outside the working directory, so it survives.
func (p *generationPipeline) cleanup(job *domain.Job) {
	if p.pipelineConfig.RetainWorkDir {
		p.logger.InfoWithFields("retaining job working directory", map[string]interface{}{
			"jobID":   job.ID,
			"workDir": job.WorkDir,
		})
		return
	}
	if err := os.RemoveAll(job.WorkDir); err != nil {
		p.logger.Error(err, "failed to remove job working directory")
	}
}

func (p *generationPipeline) record(ctx context.Context, job *domain.Job, userID string, runErr error) {
	if p.jobRecorder == nil {
		return
	}
	record := outbound.JobRecord{
		JobID:             job.ID,
		UserID:            userID,
		Succeeded:         runErr == nil,
		VoiceProfileID:    job.VoiceProfileID,
		SkippedGeneration: job.BypassVideo,
		Timing:            job.Timing,
	}
	if runErr != nil {
		var pe *domain.PipelineError
		if errors.As(runErr, &pe) {
			record.FailedStage = pe.Stage
		}
	}
	if err := p.jobRecorder.Record(ctx, record); err != nil {
		p.logger.Error(err, "failed to record job outcome")
	}
}
