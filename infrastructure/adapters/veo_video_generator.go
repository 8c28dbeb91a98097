package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"github.com/rs/zerolog/log"
	"net/http"
	"os"
)

type veoGenerateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	ImageB64       string `json:"image"`
	AspectRatio    string `json:"aspect_ratio"`
}

type veoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		VideoURI string `json:"video_uri"`
	} `json:"response,omitempty"`
}

type veoVideoGenerator struct {
	ContentFetcher
	veoConfig *config.VeoConfig
}

func NewVeoVideoGenerator(contentFetcher ContentFetcher, veoConfig *config.VeoConfig) outbound.VideoGeneratorPort {
	return &veoVideoGenerator{
		ContentFetcher: contentFetcher,
		veoConfig:      veoConfig,
	}
}

func (g *veoVideoGenerator) Generate(ctx context.Context, req outbound.GenerateVideoRequest) (domain.OperationHandle, error) {
	httpReq, err := g.getGenerateRequest(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("action", "Generating Video").Msg("Failed to construct the HTTP request for video generation")
		return domain.OperationHandle{}, err
	}

	rawRes, err := g.FetchContent(httpReq)
	if err != nil {
		return domain.OperationHandle{}, domain.NewKindError(domain.GenerationFailed, "generation request rejected: %v", err)
	}

	var op veoOperation
	if err := json.Unmarshal(rawRes, &op); err != nil {
		return domain.OperationHandle{}, domain.NewKindError(domain.GenerationFailed, "malformed generation response: %v", err)
	}
	if op.Name == "" {
		return domain.OperationHandle{}, domain.NewKindError(domain.GenerationFailed, "generation response carries no operation name")
	}

	return domain.OperationHandle{Name: op.Name}, nil
}

func (g *veoVideoGenerator) Poll(ctx context.Context, handle domain.OperationHandle) (domain.OperationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", g.veoConfig.ApiUrl+"/v1/operations/"+handle.Name, nil)
	if err != nil {
		return domain.OperationStatus{}, err
	}
	req.Header.Add("Authorization", "Bearer "+g.veoConfig.ApiKey)

	rawRes, err := g.FetchContent(req)
	if err != nil {
		return domain.OperationStatus{}, domain.NewKindError(domain.GenerationFailed, "operation status check failed: %v", err)
	}

	var op veoOperation
	if err := json.Unmarshal(rawRes, &op); err != nil {
		return domain.OperationStatus{}, domain.NewKindError(domain.GenerationFailed, "malformed operation status: %v", err)
	}

	status := domain.OperationStatus{Done: op.Done}
	if op.Response != nil {
		status.ResultRef = op.Response.VideoURI
	}
	return status, nil
}

func (g *veoVideoGenerator) Download(ctx context.Context, resultRef string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", resultRef, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+g.veoConfig.ApiKey)

	payload, err := g.FetchContent(req)
	if err != nil {
		return domain.NewKindError(domain.GenerationFailed, "result download failed: %v", err)
	}

	return os.WriteFile(destPath, payload, 0o644)
}

func (g *veoVideoGenerator) getGenerateRequest(ctx context.Context, genReq outbound.GenerateVideoRequest) (*http.Request, error) {
	aspectRatio := "9:16"
	if genReq.AspectRatio == domain.LandscapeAspectRatio {
		aspectRatio = "16:9"
	}

	reqBody := veoGenerateRequest{
		Model:          g.veoConfig.Model,
		Prompt:         genReq.Prompt,
		NegativePrompt: g.veoConfig.NegativePrompt,
		ImageB64:       base64.StdEncoding.EncodeToString(genReq.ImageBytes),
		AspectRatio:    aspectRatio,
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.veoConfig.ApiUrl+"/v1/videos:generate", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+g.veoConfig.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
