package quiz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/llm"
	"quizly/api/internal/metrics"
	"quizly/api/internal/prompts"
)

const (
	promptMode             = "quiz"
	DefaultProviderTimeout = 15 * time.Second
)

type GeneratorConfig struct {
	Limits  Limits
	Timeout time.Duration
}

// GeneratedQuiz is a parsed quiz ready to be served.
type GeneratedQuiz struct {
	RequestID  string     `json:"requestId"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Metadata   Metadata   `json:"metadata"`
}

type Metadata struct {
	ParsedAs       string `json:"parsedAs"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	ProcessingTime int    `json:"processingTimeMs"`
}

// Generator builds a prompt, calls the provider and parses its reply.
type Generator struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	limits   Limits
	timeout  time.Duration
	logger   *zap.Logger
}

func NewGenerator(provider llm.Provider, pm prompts.PromptProvider, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProviderTimeout
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		prompts:  pm,
		limits:   cfg.Limits,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

func (g *Generator) Limits() Limits {
	return g.limits
}

func (g *Generator) Generate(ctx context.Context, req Request) (*GeneratedQuiz, error) {
	providerName := g.provider.GetProviderName()
	log := g.logger.With(zap.String("request_id", req.RequestID), zap.String("provider", providerName))

	params, err := req.Resolve(g.limits)
	if err != nil {
		metrics.ObserveGeneration(providerName, metrics.OutcomeInvalidInput, 0)
		return nil, err
	}

	prompt, err := g.prompts.BuildPrompt(promptMode, string(params.Difficulty), params)
	if err != nil {
		metrics.ObserveGeneration(providerName, metrics.OutcomeInternal, 0)
		return nil, apperrors.Internal(fmt.Errorf("building prompt: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.provider.GenerateContent(callCtx, &llm.GenerationRequest{
		Prompt:       prompt,
		SystemPrompt: g.prompts.SystemPrompt(promptMode),
		RequestID:    req.RequestID,
	})
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = &llm.ProviderError{Provider: providerName, Code: llm.ErrCodeEmptyResponse, Message: "no response generated"}
	}
	if err != nil {
		metrics.ObserveGeneration(providerName, metrics.OutcomeUpstream, elapsed)
		log.Error("provider call failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, g.upstreamError(callCtx, err)
	}

	result, err := Parse(resp.Content)
	if err != nil {
		outcome := metrics.OutcomeParse
		if apperrors.IsKind(err, apperrors.KindEmptyResult) {
			outcome = metrics.OutcomeEmpty
		}
		if apperrors.IsKind(err, apperrors.KindInvalidInput) {
			// blank content is an upstream failure, not a client error
			err = apperrors.Upstream(err, apperrors.WithMessagef("provider returned an empty response"))
			outcome = metrics.OutcomeUpstream
		}
		metrics.ObserveGeneration(providerName, outcome, elapsed)
		log.Warn("could not parse provider response", zap.Error(err), zap.Int("content_length", len(resp.Content)))
		return nil, err
	}

	metrics.ObserveGeneration(providerName, metrics.OutcomeOK, elapsed)
	metrics.ObserveParsed(result.ParsedAs.String())
	log.Info("quiz generated",
		zap.String("topic", params.Topic),
		zap.String("parsed_as", result.ParsedAs.String()),
		zap.Int("requested", params.NumQuestions),
		zap.Int("received", len(result.Questions)),
	)

	return &GeneratedQuiz{
		RequestID:  req.RequestID,
		Topic:      params.Topic,
		Difficulty: params.Difficulty,
		Questions:  result.Questions,
		Metadata: Metadata{
			ParsedAs:       result.ParsedAs.String(),
			Provider:       resp.Metadata.Provider,
			Model:          resp.Metadata.Model,
			ProcessingTime: int(elapsed.Milliseconds()),
		},
	}, nil
}

func (g *Generator) upstreamError(ctx context.Context, err error) error {
	var provErr *llm.ProviderError
	switch {
	case errors.As(err, &provErr) && provErr.Code == llm.ErrCodeRateLimit:
		return apperrors.Upstream(err,
			apperrors.WithMessagef("quiz provider is rate limited, try again shortly"),
			apperrors.WithStatus(http.StatusTooManyRequests))
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || (provErr != nil && provErr.Code == llm.ErrCodeTimeout):
		return apperrors.Upstream(err, apperrors.WithMessagef("quiz provider did not answer within %s", g.timeout))
	default:
		return apperrors.Upstream(err)
	}
}
