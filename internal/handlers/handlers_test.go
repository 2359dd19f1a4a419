package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"text/template"

	"quizly/api/internal/llm"
	"quizly/api/internal/middleware"
	"quizly/api/internal/models"
	"quizly/api/internal/quiz"
)

type mockGenerator struct {
	generateFn func(ctx context.Context, req quiz.Request) (*quiz.GeneratedQuiz, error)
	lastReq    quiz.Request
}

func (m *mockGenerator) Generate(ctx context.Context, req quiz.Request) (*quiz.GeneratedQuiz, error) {
	m.lastReq = req
	return m.generateFn(ctx, req)
}

type mockLeaderboard struct {
	entries       []models.LeaderboardEntry
	lastLimit     int
	invalidations int
	err           error
}

func (m *mockLeaderboard) Top(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}

func (m *mockLeaderboard) Invalidate(context.Context) error {
	m.invalidations++
	return nil
}

type mockProvider struct{}

func (mockProvider) GenerateContent(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return &llm.GenerationResponse{}, nil
}

func (mockProvider) GetProviderName() string { return "mock" }

type mockPromptManager struct {
	templates map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(string, string, interface{}) (string, error) {
	return "prompt", nil
}

func (m *mockPromptManager) SystemPrompt(string) string { return "system" }

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	return m.templates
}

// serve runs h behind body validation for T, optionally as an authenticated user.
func serve[T middleware.Validator](t *testing.T, h http.HandlerFunc, method, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	handler := middleware.ValidateRequest[T]()(h)
	return do(t, handler, method, "/", body, userID)
}

func do(t *testing.T, h http.Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
