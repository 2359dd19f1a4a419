package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quizly/api/internal/config"
	"quizly/api/internal/handlers"
	"quizly/api/internal/jobs"
	"quizly/api/internal/leaderboard"
	"quizly/api/internal/llm"
	_ "quizly/api/internal/llm/gemini"
	_ "quizly/api/internal/llm/groq"
	"quizly/api/internal/metrics"
	"quizly/api/internal/models"
	"quizly/api/internal/prompts"
	"quizly/api/internal/quiz"
	"quizly/api/internal/repositories"
	mongorepo "quizly/api/internal/repositories/mongo"
	"quizly/api/internal/routers"
	"quizly/api/internal/utils"
)

func registerRoutes(router *chi.Mux, cfg *config.Config, quizHandler *handlers.QuizHandler, authHandler *handlers.AuthHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler, metrics.Handler())
	routers.AuthRoutes(router, authHandler)
	routers.QuizRoutes(router, quizHandler, cfg.Auth.JWTSecret)
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	return router
}

// initDatabase opens the users database and migrates the users table.
func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// initResultStore returns the configured results repository and a function
// releasing its connection.
func initResultStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (repositories.ResultRepository, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if cfg.Results.Store == "sql" {
		repo, err := repositories.NewSQLResultRepository(db)
		return repo, noop, err
	}

	client, err := mongorepo.NewClient(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	repo, err := mongorepo.NewResultRepo(ctx, client, cfg.Mongo.Collection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, noop, err
	}
	return repo, client.Disconnect, nil
}

// initRedis returns nil when no address is configured; the leaderboard then
// runs uncached.
func initRedis(cfg config.RedisConfig) redis.UniversalClient {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func healthDependencies(db *gorm.DB, results repositories.ResultRepository, rdb redis.UniversalClient) map[string]handlers.Pinger {
	deps := map[string]handlers.Pinger{
		"users_db": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"results_store": results,
	}
	if rdb != nil {
		deps["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return deps
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("results_store", cfg.Results.Store),
		zap.String("env", cfg.Server.Env))
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.Auth.JWTSecret = "dev"
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize quiz provider", zap.Error(err))
	}

	difficulty, err := quiz.ParseDifficulty(cfg.Quiz.DefaultDifficulty, quiz.DifficultyEasy)
	if err != nil {
		logger.Fatal("Invalid default difficulty", zap.Error(err))
	}
	generator := quiz.NewGenerator(provider, promptManager, quiz.GeneratorConfig{
		Limits: quiz.Limits{
			MinQuestions:      cfg.Quiz.MinQuestions,
			MaxQuestions:      cfg.Quiz.MaxQuestions,
			DefaultQuestions:  cfg.Quiz.DefaultQuestions,
			DefaultDifficulty: difficulty,
		},
		Timeout: cfg.LLM.Timeout,
	}, logger)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	users := &repositories.UserRepository{DB: db}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	results, closeResults, err := initResultStore(startCtx, cfg, db)
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to initialize results store", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	board := leaderboard.NewService(leaderboard.Config{
		Results:      results,
		Users:        users,
		Redis:        rdb,
		Prefix:       "quizly:",
		CacheTTL:     cfg.Leaderboard.CacheTTL,
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		MaxLimit:     cfg.Leaderboard.MaxLimit,
		Logger:       logger,
	})

	refreshJob := jobs.NewLeaderboardRefreshJob(board, cfg.Leaderboard.RefreshSchedule, logger)
	if err := refreshJob.Start(); err != nil {
		logger.Error("Failed to start leaderboard refresh job", zap.Error(err))
	}

	quizHandler := handlers.NewQuizHandler(generator, results, board, logger)
	authHandler := handlers.NewAuthHandler(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)
	healthHandler := handlers.NewHealthHandler(provider, promptManager, cfg, healthDependencies(db, results, rdb))

	router := newRouter(cfg)
	registerRoutes(router, cfg, quizHandler, authHandler, healthHandler)

	serverAddr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("quizly api starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("quizly api shutting down...")

	refreshJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := closeResults(ctx); err != nil {
		logger.Warn("failed to close results store", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("quizly api exited")
}
