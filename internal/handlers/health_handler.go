package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"quizly/api/internal/config"
	"quizly/api/internal/llm"
	"quizly/api/internal/prompts"
	"quizly/api/internal/utils"
)

const readinessTimeout = 2 * time.Second

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	dependencies  map[string]Pinger
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		dependencies:  dependencies,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "quizly",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)

	switch {
	case handler.provider == nil:
		checks["provider"] = failed("quiz provider not initialized")
	default:
		checks["provider"] = ReadinessCheck{Status: "ok"}
	}

	switch {
	case handler.promptManager == nil:
		checks["prompt_manager"] = failed("prompt manager not initialized")
	case len(handler.promptManager.GetTemplates()) == 0:
		checks["prompt_manager"] = failed("no prompt templates loaded")
	default:
		checks["prompt_manager"] = ReadinessCheck{Status: "ok"}
	}

	if handler.config == nil {
		checks["configuration"] = failed("configuration not loaded")
	} else {
		checks["configuration"] = ReadinessCheck{Status: "ok"}
	}

	for name, check := range handler.pingDependencies(request.Context()) {
		checks[name] = check
	}

	response := ReadinessResponse{Service: "quizly", Checks: checks}
	for _, c := range checks {
		if c.Status != "ok" {
			response.Status = "not_ready"
			utils.JSON(writer, http.StatusServiceUnavailable, response)
			return
		}
	}
	response.Status = "ready"
	utils.JSON(writer, http.StatusOK, response)
}

// pingDependencies runs every ping concurrently within readinessTimeout.
func (handler *HealthHandler) pingDependencies(ctx context.Context) map[string]ReadinessCheck {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]ReadinessCheck, len(handler.dependencies))
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, dep := range handler.dependencies {
		g.Go(func() error {
			check := ReadinessCheck{Status: "ok"}
			if dep == nil {
				check = failed("not configured")
			} else if err := dep.Ping(gctx); err != nil {
				check = failed(err.Error())
			}
			mu.Lock()
			results[name] = check
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failed(msg string) ReadinessCheck {
	return ReadinessCheck{Status: "failed", Message: msg}
}
