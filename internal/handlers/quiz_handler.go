package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/middleware"
	"quizly/api/internal/models"
	"quizly/api/internal/quiz"
	"quizly/api/internal/repositories"
	"quizly/api/internal/utils"
)

type QuizGenerator interface {
	Generate(ctx context.Context, req quiz.Request) (*quiz.GeneratedQuiz, error)
}

type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Invalidate(ctx context.Context) error
}

type QuizHandler struct {
	generator   QuizGenerator
	results     repositories.ResultRepository
	leaderboard Leaderboard
	logger      *zap.Logger
}

func NewQuizHandler(generator QuizGenerator, results repositories.ResultRepository, leaderboard Leaderboard, logger *zap.Logger) *QuizHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizHandler{
		generator:   generator,
		results:     results,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (h *QuizHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*quiz.Request](r)
	req.RequestID = ensureRequestID(req.RequestID)

	generated, err := h.generator.Generate(r.Context(), *req)
	if err != nil {
		h.logger.Error("quiz generation failed", zap.Error(err), zap.String("request_id", req.RequestID))
		utils.WriteError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, generated)
}

func (h *QuizHandler) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ScoreRequest](r)
	utils.JSON(w, http.StatusOK, quiz.Score(req.Questions, req.Answers))
}

// SaveResultHandler stores an attempt for the caller. When questions are sent
// the score is computed here and any client score is ignored.
func (h *QuizHandler) SaveResultHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated))
		return
	}
	req := middleware.GetValidatedRequest[*models.SaveResultRequest](r)

	result := &models.QuizResult{
		UserID:     userID,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	}
	if len(req.Questions) > 0 {
		card := quiz.Score(req.Questions, req.Answers)
		result.Score, result.TotalQuestions = card.Score, card.Total
	} else {
		result.Score, result.TotalQuestions = *req.Score, req.TotalQuestions
	}

	if err := h.results.Create(r.Context(), result); err != nil {
		h.logger.Error("failed to save quiz result", zap.Error(err), zap.String("user_id", userID))
		utils.WriteError(w, err)
		return
	}
	h.invalidateLeaderboard(r.Context(), userID)

	utils.JSON(w, http.StatusCreated, result)
}

func (h *QuizHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	results, ok := h.listForCaller(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, results)
}

func (h *QuizHandler) DeleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated))
		return
	}

	deleted, err := h.results.DeleteByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to delete quiz history", zap.Error(err), zap.String("user_id", userID))
		utils.WriteError(w, err)
		return
	}
	if deleted > 0 {
		h.invalidateLeaderboard(r.Context(), userID)
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"deleted": deleted,
		"message": "All quiz history deleted",
	})
}

func (h *QuizHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	results, ok := h.listForCaller(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, buildStats(results))
}

func (h *QuizHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	results, ok := h.listForCaller(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, buildDashboard(results))
}

func (h *QuizHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.WriteError(w, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load leaderboard", zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *QuizHandler) listForCaller(w http.ResponseWriter, r *http.Request) ([]models.QuizResult, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated))
		return nil, false
	}

	results, err := h.results.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list quiz results", zap.Error(err), zap.String("user_id", userID))
		utils.WriteError(w, err)
		return nil, false
	}
	if results == nil {
		results = []models.QuizResult{}
	}
	return results, true
}

// a stale leaderboard is tolerable, so failures are only logged
func (h *QuizHandler) invalidateLeaderboard(ctx context.Context, userID string) {
	if h.leaderboard == nil {
		return
	}
	if err := h.leaderboard.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err), zap.String("user_id", userID))
	}
}

func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}
