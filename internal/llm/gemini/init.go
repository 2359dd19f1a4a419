package gemini

import (
	"context"

	"quizly/api/internal/llm"
)

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider("gemini", func(cfg llm.Config) (llm.Provider, error) {
		config, err := NewConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(context.Background(), config)
	})
}
