package adapters

import (
	"bytes"
	"context"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"github.com/rs/zerolog/log"
	"mime/multipart"
	"net/http"
)

type elevenLabsVoiceSwapper struct {
	ContentFetcher
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsVoiceSwapper(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig) outbound.VoiceSwapperPort {
	return &elevenLabsVoiceSwapper{
		ContentFetcher:   contentFetcher,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (s *elevenLabsVoiceSwapper) Swap(ctx context.Context, req outbound.SwapVoiceRequest) ([]byte, error) {
	if req.VoiceProfileID == "" {
		return nil, domain.NewKindError(domain.SwapFailed, "voice profile id is empty")
	}

	httpReq, err := s.getRequest(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("action", "Swapping Voice").Str("voiceID", req.VoiceProfileID).Msg("Failed to construct the HTTP request for voice swap")
		return nil, err
	}

	audio, err := s.FetchContent(httpReq)
	if err != nil {
		return nil, domain.NewKindError(domain.SwapFailed, "voice swap rejected: %v", err)
	}

	return audio, nil
}

func (s *elevenLabsVoiceSwapper) getRequest(ctx context.Context, swapReq outbound.SwapVoiceRequest) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model_id", s.elevenLabsConfig.SwapModelId); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("audio", "extracted.mp3")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(swapReq.AudioBytes); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.elevenLabsConfig.ApiUrl+"/v1/speech-to-speech/"+swapReq.VoiceProfileID, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "audio/mpeg")
	req.Header.Add("xi-api-key", s.elevenLabsConfig.ApiKey)
	req.Header.Add("Content-Type", writer.FormDataContentType())

	return req, nil
}
