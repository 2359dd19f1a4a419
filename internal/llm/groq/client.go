package groq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"quizly/api/internal/llm"
)

const providerName = "groq"

// Client talks to Groq's OpenAI-compatible chat completions endpoint.
type Client struct {
	config *Config
	api    *openai.Client
}

func NewClient(config *Config) *Client {
	apiConfig := openai.DefaultConfig(config.APIKey)
	apiConfig.BaseURL = config.BaseURL
	apiConfig.HTTPClient = config.HTTPClient
	return &Client{config: config, api: openai.NewClientWithConfig(apiConfig)}
}

func (c *Client) GenerateContent(ctx context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	startTime := time.Now()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return nil, c.classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, c.providerError(llm.ErrCodeEmptyResponse, "empty response generated", nil)
	}

	model := resp.Model
	if model == "" {
		model = c.config.Model
	}

	return &llm.GenerationResponse{
		Content:   resp.Choices[0].Message.Content,
		RequestID: req.RequestID,
		Metadata: llm.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

// classify maps client errors onto provider error codes. Non-2xx replies come
// back as *openai.APIError, or *openai.RequestError when the body is not an
// OpenAI error envelope.
func (c *Client) classify(err error) *llm.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return c.statusError(apiErr.HTTPStatusCode, fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return c.statusError(reqErr.HTTPStatusCode, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return c.providerError(llm.ErrCodeTimeout, "request timed out", err)
	}
	return c.providerError(llm.ErrCodeServiceDown, "request failed", err)
}

func (c *Client) statusError(status int, cause error) *llm.ProviderError {
	switch status {
	case http.StatusTooManyRequests:
		return c.providerError(llm.ErrCodeRateLimit, "rate limit exceeded", cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return c.providerError(llm.ErrCodeAPIKey, "api key rejected", cause)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return c.providerError(llm.ErrCodeInvalidInput, "request rejected", cause)
	default:
		return c.providerError(llm.ErrCodeServiceDown, "upstream error", cause)
	}
}

func (c *Client) providerError(code, message string, err error) *llm.ProviderError {
	return &llm.ProviderError{Provider: providerName, Code: code, Message: message, Err: err}
}
