package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/middleware"
	"quizly/api/internal/models"
	"quizly/api/internal/repositories"
	"quizly/api/internal/utils"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var errInvalidCredentials = apperrors.New(apperrors.KindUnauthenticated, apperrors.WithMessagef("invalid credentials"))

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	Repo      *repositories.UserRepository
	JWTSecret string
	TokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(repo *repositories.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{Repo: repo, JWTSecret: secret, TokenTTL: ttl, logger: logger}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	existing, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		h.logger.Error("failed to look up user", zap.Error(err))
		utils.WriteError(w, apperrors.Persistence(err))
		return
	}
	if existing != nil {
		utils.WriteError(w, apperrors.New(apperrors.KindConflict, apperrors.WithMessagef("email already registered")))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, apperrors.Internal(err))
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	err = h.Repo.CreateUser(user)
	if errors.Is(err, repositories.ErrEmailTaken) {
		utils.WriteError(w, apperrors.New(apperrors.KindConflict, apperrors.WithMessagef("email already registered")))
		return
	}
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		utils.WriteError(w, apperrors.Persistence(err))
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	user, err := h.Repo.GetUserByEmail(req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		utils.WriteError(w, errInvalidCredentials)
		return
	}
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		utils.WriteError(w, apperrors.Persistence(err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.WriteError(w, errInvalidCredentials)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperrors.New(apperrors.KindUnauthenticated))
		return
	}

	user, err := h.Repo.GetUserByID(userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		utils.WriteError(w, apperrors.New(apperrors.KindNotFound, apperrors.WithMessagef("user not found")))
		return
	}
	if err != nil {
		utils.WriteError(w, apperrors.Persistence(err))
		return
	}

	utils.JSON(w, http.StatusOK, user.Profile())
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := utils.GenerateToken(user.ID, h.JWTSecret, h.TokenTTL)
	if err != nil {
		utils.WriteError(w, apperrors.Internal(err))
		return
	}
	utils.JSON(w, status, models.AuthResponse{Token: token, User: user.Profile()})
}
