package mock_generator

import (
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/application/services"
	"generate-avatar-video/config"
	"generate-avatar-video/infrastructure/adapters"
	"generate-avatar-video/infrastructure/gin_interface/controllers"
	"github.com/gin-gonic/gin"
	"time"
)

// Init mounts a /mock/generate route that exercises the full pipeline with
// stub adapters, for local development without external services or ffmpeg.
func Init(g *gin.Engine, workerPool outbound.TaskDispatcher, logger outbound.LoggerPort, workRoot string) {
	pipelineConfig := &config.PipelineConfig{
		WorkRoot:           workRoot,
		DefaultPrompt:      "a person speaking naturally to the camera",
		OperationPollEvery: 10 * time.Millisecond,
		StablePollEvery:    10 * time.Millisecond,
		StableMaxAttempts:  20,
		StableChecks:       3,
		SettleDelay:        10 * time.Millisecond,
	}

	pipeline := services.NewGenerationPipeline(
		logger,
		StubVoiceTrainer{},
		&StubVideoGenerator{PollsUntilDone: 2},
		StubVoiceSwapper{},
		StubMediaProcessor{OutputDir: workRoot},
		adapters.NewFileStabilityWaiter(logger),
		nil,
		nil,
		pipelineConfig,
	)

	mockController := controllers.NewGenerationController(logger, workerPool, pipeline)

	mockGroup := g.Group("/mock")
	mockGroup.POST("/generate", mockController.Generate)
}
