package groq

import "quizly/api/internal/llm"

func init() {
	llm.RegisterProvider("groq", func(cfg llm.Config) (llm.Provider, error) {
		config, err := NewConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(config), nil
	})
}
