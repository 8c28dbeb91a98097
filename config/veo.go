package config

import (
	"fmt"
	"os"
)

type VeoConfig struct {
	ApiUrl         string
	ApiKey         string
	Model          string
	NegativePrompt string
}

func GetVeoConfig() (*VeoConfig, error) {
	apiUrl := os.Getenv("VEO_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("VEO_API_URL must be set")
	}
	apiKey := os.Getenv("VEO_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("VEO_API_KEY must be set")
	}
	model := os.Getenv("VEO_MODEL")
	if model == "" {
		return nil, fmt.Errorf("VEO_MODEL must be set")
	}

	return &VeoConfig{
		ApiUrl:         apiUrl,
		ApiKey:         apiKey,
		Model:          model,
		NegativePrompt: os.Getenv("VEO_NEGATIVE_PROMPT"),
	}, nil
}
