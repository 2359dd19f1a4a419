package routers

import (
	"github.com/go-chi/chi/v5"

	"quizly/api/internal/handlers"
	"quizly/api/internal/middleware"
	"quizly/api/internal/models"
	"quizly/api/internal/quiz"
)

func QuizRoutes(router *chi.Mux, quizHandler *handlers.QuizHandler, jwtSecret string) {
	router.Route("/api/v1/quiz", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*quiz.Request]()).Post("/generate", quizHandler.GenerateHandler)
		r.With(middleware.ValidateRequest[*models.ScoreRequest]()).Post("/score", quizHandler.ScoreHandler)
		r.Get("/leaderboard", quizHandler.LeaderboardHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtSecret))
			r.With(middleware.ValidateRequest[*models.SaveResultRequest]()).Post("/results", quizHandler.SaveResultHandler)
			r.Get("/history", quizHandler.HistoryHandler)
			r.Delete("/history", quizHandler.DeleteHistoryHandler)
			r.Get("/stats", quizHandler.StatsHandler)
			r.Get("/dashboard", quizHandler.DashboardHandler)
		})
	})
}
