package config

import (
	"fmt"
	"os"
)

type ElevenLabsConfig struct {
	ApiUrl      string
	ApiKey      string
	SwapModelId string
}

func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	apiUrl := os.Getenv("ELEVEN_LABS_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_URL must be set")
	}
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_KEY must be set")
	}
	swapModelId := os.Getenv("ELEVEN_LABS_SWAP_MODEL_ID")
	if swapModelId == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_SWAP_MODEL_ID must be set")
	}

	return &ElevenLabsConfig{
		ApiUrl:      apiUrl,
		ApiKey:      apiKey,
		SwapModelId: swapModelId,
	}, nil
}
