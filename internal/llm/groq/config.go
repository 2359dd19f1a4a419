package groq

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"quizly/api/internal/llm"
)

const (
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultBaseURL = "https://api.groq.com/openai/v1"
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

func NewConfig(cfg llm.Config) (*Config, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: api key is required")
	}

	c := &Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return c, nil
}
