package main

import (
	"fmt"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/application/services"
	"generate-avatar-video/config"
	"generate-avatar-video/infrastructure/adapters"
	"generate-avatar-video/infrastructure/gin_interface/controllers"
	"generate-avatar-video/middleware"
	mockgenerator "generate-avatar-video/mock"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"os"
)

func main() {
	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	veoConfig, err := config.GetVeoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get veo config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	authConfig, err := config.GetAuthConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get auth config")
	}

	if err := os.MkdirAll(pipelineConfig.WorkRoot, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create pipeline work root")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	voiceTrainer := adapters.NewElevenLabsVoiceTrainer(contentFetcher, elevenLabsConfig)
	voiceSwapper := adapters.NewElevenLabsVoiceSwapper(contentFetcher, elevenLabsConfig)
	videoGenerator := adapters.NewVeoVideoGenerator(contentFetcher, veoConfig)

	mediaProcessor := adapters.NewFFmpegMediaProcessor(zeroLogger, pipelineConfig.WorkRoot)
	artifactWaiter := adapters.NewFileStabilityWaiter(zeroLogger)

	var videoPublisher outbound.VideoPublisherPort
	var jobRecorder outbound.JobRecorderPort
	if s3Config.Enabled || dynamoConfig.Enabled {
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
		if s3Config.Enabled {
			videoPublisher = adapters.NewS3VideoPublisher(zeroLogger, s3.New(sess), s3Config)
		}
		if dynamoConfig.Enabled {
			jobRecorder = adapters.NewDynamoJobRecorder(zeroLogger, dynamodb.New(sess), dynamoConfig)
		}
	}

	pipeline := services.NewGenerationPipeline(
		zeroLogger,
		voiceTrainer,
		videoGenerator,
		voiceSwapper,
		mediaProcessor,
		artifactWaiter,
		videoPublisher,
		jobRecorder,
		pipelineConfig,
	)

	generationController := controllers.NewGenerationController(zeroLogger, workerPool, pipeline)

	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if authConfig.Enabled {
		authHandler, err := middleware.NewAuthHandler(authConfig.JwksUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	mockgenerator.Init(router, workerPool, zeroLogger, pipelineConfig.WorkRoot)

	generationController.RegisterRoutes(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
