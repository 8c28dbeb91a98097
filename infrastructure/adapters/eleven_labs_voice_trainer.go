package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"github.com/rs/zerolog/log"
	"mime/multipart"
	"net/http"
)

type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

type elevenLabsVoiceTrainer struct {
	ContentFetcher
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsVoiceTrainer(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig) outbound.VoiceTrainerPort {
	return &elevenLabsVoiceTrainer{
		ContentFetcher:   contentFetcher,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (t *elevenLabsVoiceTrainer) Train(ctx context.Context, req outbound.TrainVoiceRequest) (string, error) {
	httpReq, err := t.getRequest(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("action", "Training Voice").Msg("Failed to construct the HTTP request for voice training")
		return "", err
	}

	rawRes, err := t.FetchContent(httpReq)
	if err != nil {
		return "", domain.NewKindError(domain.TrainingFailed, "voice training rejected: %v", err)
	}

	var res addVoiceResponse
	if err := json.Unmarshal(rawRes, &res); err != nil {
		log.Error().Err(err).Str("action", "Training Voice").Msg("Failed to unmarshal the voice training response")
		return "", domain.NewKindError(domain.TrainingFailed, "malformed voice training response: %v", err)
	}
	if res.VoiceID == "" {
		return "", domain.NewKindError(domain.TrainingFailed, "voice training response carries no voice id")
	}

	return res.VoiceID, nil
}

func (t *elevenLabsVoiceTrainer) getRequest(ctx context.Context, trainReq outbound.TrainVoiceRequest) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("name", trainReq.Label); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("files", "sample.mp3")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(trainReq.AudioBytes); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.elevenLabsConfig.ApiUrl+"/v1/voices/add", body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("xi-api-key", t.elevenLabsConfig.ApiKey)
	req.Header.Add("Content-Type", writer.FormDataContentType())

	return req, nil
}
