package gemini

import (
	"errors"

	"quizly/api/internal/llm"
)

const (
	DefaultModel = "gemini-2.5-flash"
	apiVersion   = "v1beta"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int32
}

func NewConfig(cfg llm.Config) (*Config, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Config{
		APIKey:      cfg.APIKey,
		Model:       model,
		BaseURL:     cfg.BaseURL,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   int32(cfg.MaxTokens),
	}, nil
}
