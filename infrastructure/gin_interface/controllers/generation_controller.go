package controllers

import (
	"errors"
	"generate-avatar-video/application/ports/inbound"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/channel_utils"
	"generate-avatar-video/domain"
	"generate-avatar-video/infrastructure/gin_interface/dto"
	"generate-avatar-video/middleware"
	"github.com/gin-gonic/gin"
	"io"
	"mime/multipart"
	"net/http"
)

type GenerationController interface {
	Generate(c *gin.Context)
	GenerateStream(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type generationController struct {
	logger     outbound.LoggerPort
	workerPool outbound.TaskDispatcher
	pipeline   inbound.GenerationPipelinePort
}

func NewGenerationController(
	logger outbound.LoggerPort,
	workerPool outbound.TaskDispatcher,
	pipeline inbound.GenerationPipelinePort) GenerationController {
	return &generationController{
		logger:     logger,
		workerPool: workerPool,
		pipeline:   pipeline,
	}
}

func (g *generationController) Generate(c *gin.Context) {
	params, ok := g.bindParams(c)
	if !ok {
		return
	}

	res, err := g.pipeline.Run(c.Request.Context(), params)
	if err != nil {
		g.abortWithFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(res))
}

// GenerateStream runs the same pipeline but streams per-stage progress as
// server-sent events, ending with a "result" or "error" event.
func (g *generationController) GenerateStream(c *gin.Context) {
	params, ok := g.bindParams(c)
	if !ok {
		return
	}

	events := make(chan domain.StageEvent, 16)
	params.Events = events

	stageCh := make(chan ssePayload)
	terminalCh := make(chan ssePayload, 1)

	err := g.workerPool.Submit(func() {
		defer close(stageCh)
		for ev := range events {
			stageCh <- ssePayload{event: "stage", data: ev}
		}
	})
	if err != nil {
		g.logger.Error(err, "failed to submit event pump")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = g.workerPool.Submit(func() {
		defer close(terminalCh)
		res, err := g.pipeline.Run(c.Request.Context(), params)
		if err != nil {
			terminalCh <- ssePayload{event: "error", data: dto.NewFailureResponse(err)}
			return
		}
		terminalCh <- ssePayload{event: "result", data: toResponse(res)}
	})
	if err != nil {
		g.logger.Error(err, "failed to submit pipeline job")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	merged, err := channel_utils.MergeChannels[ssePayload](g.workerPool, stageCh, terminalCh)
	if err != nil {
		g.logger.Error(err, "failed to merge event channels")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Stream(func(w io.Writer) bool {
		payload, open := <-merged
		if !open {
			return false
		}
		c.SSEvent(payload.event, payload.data)
		return true
	})

	// The client can drop mid-stream while the job is still winding down.
	// Keep draining until the pipeline (aborting on the request context)
	// closes its channels, so the pump and merge workers return to the pool.
	for range merged {
	}
}

type ssePayload struct {
	event string
	data  interface{}
}

func (g *generationController) RegisterRoutes(r *gin.Engine) {
	r.POST("/generate", g.Generate)
	r.POST("/generate/stream", middleware.SSEMiddleware(), g.GenerateStream)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (g *generationController) bindParams(c *gin.Context) (inbound.RunJobParams, bool) {
	var req dto.GenerateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return inbound.RunJobParams{}, false
	}

	audioBytes, err := g.readFilePart(c, "audio")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "audio file part is required"})
		return inbound.RunJobParams{}, false
	}

	imageBytes, err := g.optionalFilePart(c, "image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable image file part"})
		return inbound.RunJobParams{}, false
	}
	videoBytes, err := g.optionalFilePart(c, "video")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable video file part"})
		return inbound.RunJobParams{}, false
	}

	return inbound.RunJobParams{
		ImageBytes: imageBytes,
		AudioBytes: audioBytes,
		Prompt:     req.Prompt,
		VideoBytes: videoBytes,
		UserID:     req.UserID,
	}, true
}

// optionalFilePart reads a file part that may legitimately be absent. A part
// that is present but unreadable is still a client error.
func (g *generationController) optionalFilePart(c *gin.Context, name string) ([]byte, error) {
	payload, err := g.readFilePart(c, name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return payload, err
}

func (g *generationController) readFilePart(c *gin.Context, name string) ([]byte, error) {
	fileHeader, err := c.FormFile(name)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func(file multipart.File) {
		if err := file.Close(); err != nil {
			g.logger.Error(err, "failed to close uploaded file part")
		}
	}(file)

	return io.ReadAll(file)
}

func (g *generationController) abortWithFailure(c *gin.Context, err error) {
	failure := dto.NewFailureResponse(err)

	status := http.StatusBadGateway
	var ke *domain.KindError
	if errors.As(err, &ke) && ke.Kind == domain.InvalidInput {
		status = http.StatusBadRequest
	}
	var pe *domain.PipelineError
	if !errors.As(err, &pe) && failure.ErrorKind == "Internal" {
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, failure)
}

func toResponse(res *inbound.JobResult) dto.GenerateVideoResponse {
	return dto.GenerateVideoResponse{
		JobID:             res.JobID,
		OutputPath:        res.OutputPath,
		VoiceProfileID:    res.VoiceProfileID,
		SkippedGeneration: res.SkippedGeneration,
		DurationSec:       res.DurationSec,
		Timing:            res.Timing,
		VideoKey:          res.VideoKey,
		VideoRegion:       res.VideoRegion,
	}
}
