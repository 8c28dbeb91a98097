package adapters

import (
	"context"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"time"
)

type dynamoJobItem struct {
	JobID             string `dynamodbav:"job_id"`
	UserID            string `dynamodbav:"user_id"`
	Succeeded         bool   `dynamodbav:"succeeded"`
	FailedStage       string `dynamodbav:"failed_stage,omitempty"`
	VoiceProfileID    string `dynamodbav:"voice_profile_id,omitempty"`
	SkippedGeneration bool   `dynamodbav:"skipped_generation"`
	TrainingMs        int64  `dynamodbav:"training_ms"`
	GenerationMs      int64  `dynamodbav:"generation_ms"`
	PollCount         int    `dynamodbav:"poll_count"`
	SwapMs            int64  `dynamodbav:"swap_ms"`
	TotalMs           int64  `dynamodbav:"total_ms"`
	TTL               int64  `dynamodbav:"ttl"`
}

type dynamoJobRecorder struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoJobRecorder(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.JobRecorderPort {
	return &dynamoJobRecorder{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (r *dynamoJobRecorder) Record(ctx context.Context, record outbound.JobRecord) error {
	item := dynamoJobItem{
		JobID:             record.JobID,
		UserID:            record.UserID,
		Succeeded:         record.Succeeded,
		FailedStage:       string(record.FailedStage),
		VoiceProfileID:    record.VoiceProfileID,
		SkippedGeneration: record.SkippedGeneration,
		TrainingMs:        record.Timing.TrainingMs,
		GenerationMs:      record.Timing.GenerationMs,
		PollCount:         record.Timing.PollCount,
		SwapMs:            record.Timing.SwapMs,
		TotalMs:           record.Timing.TotalMs,
		TTL:               time.Now().Add(time.Duration(r.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to marshal job record", map[string]interface{}{
			"jobID": record.JobID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(r.dynamoConfig.TableName),
	}

	if _, err := r.dynamoSvc.PutItemWithContext(ctx, input); err != nil {
		r.logger.ErrorWithFields(err, "Failed to save job record", map[string]interface{}{
			"jobID": record.JobID,
		})
		return err
	}

	return nil
}
