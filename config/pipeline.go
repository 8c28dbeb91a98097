package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultWorkRoot          = "/tmp/avatar-jobs"
	defaultPrompt            = "a person speaking naturally to the camera"
	defaultPollInterval      = 10 * time.Second
	defaultStableInterval    = 2 * time.Second
	defaultStableMaxAttempts = 60
	defaultStableChecks      = 3
	defaultSettleDelay       = time.Second
)

type PipelineConfig struct {
	WorkRoot           string
	DefaultPrompt      string
	OperationPollEvery time.Duration
	StablePollEvery    time.Duration
	StableMaxAttempts  int
	StableChecks       int
	SettleDelay        time.Duration
	RetainWorkDir      bool
}

func GetPipelineConfig() (*PipelineConfig, error) {
	cfg := &PipelineConfig{
		WorkRoot:           defaultWorkRoot,
		DefaultPrompt:      defaultPrompt,
		OperationPollEvery: defaultPollInterval,
		StablePollEvery:    defaultStableInterval,
		StableMaxAttempts:  defaultStableMaxAttempts,
		StableChecks:       defaultStableChecks,
		SettleDelay:        defaultSettleDelay,
	}

	if root := os.Getenv("PIPELINE_WORK_ROOT"); root != "" {
		cfg.WorkRoot = root
	}
	if prompt := os.Getenv("PIPELINE_DEFAULT_PROMPT"); prompt != "" {
		cfg.DefaultPrompt = prompt
	}
	if interval := os.Getenv("PIPELINE_POLL_INTERVAL_SECONDS"); interval != "" {
		seconds, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PIPELINE_POLL_INTERVAL_SECONDS")
		}
		cfg.OperationPollEvery = time.Duration(seconds) * time.Second
	}
	if attempts := os.Getenv("PIPELINE_STABLE_MAX_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PIPELINE_STABLE_MAX_ATTEMPTS")
		}
		cfg.StableMaxAttempts = val
	}
	if retain := os.Getenv("PIPELINE_RETAIN_WORK_DIR"); retain != "" {
		val, err := strconv.ParseBool(retain)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PIPELINE_RETAIN_WORK_DIR")
		}
		cfg.RetainWorkDir = val
	}

	return cfg, nil
}
