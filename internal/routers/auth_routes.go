package routers

import (
	"github.com/go-chi/chi/v5"

	"quizly/api/internal/handlers"
	"quizly/api/internal/middleware"
	"quizly/api/internal/models"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.With(middleware.RequireAuth(authHandler.JWTSecret)).Get("/me", authHandler.MeHandler)
	})
}
