package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stemsi/quizlink-backend/internal/config"
	"github.com/stemsi/quizlink-backend/internal/database"
	"github.com/stemsi/quizlink-backend/internal/handler"
	"github.com/stemsi/quizlink-backend/internal/logger"
	"github.com/stemsi/quizlink-backend/internal/metrics"
	"github.com/stemsi/quizlink-backend/internal/middleware"
	"github.com/stemsi/quizlink-backend/internal/repository"
	"github.com/stemsi/quizlink-backend/internal/router"
	"github.com/stemsi/quizlink-backend/internal/service"
	"github.com/stemsi/quizlink-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	zlog.Logger = log
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting QuizLink Backend")

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD and ADMIN_PASSWORD_HASH are empty, admin routes will reject every request")
	}
	if len(cfg.JWTSecret) < config.MinJWTSecretLength {
		log.Warn().
			Int("min_length", config.MinJWTSecretLength).
			Msg("JWT_SECRET is unset or too short, admin login tokens are disabled; use the X-Admin-Password header")
	}

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	payloadCache := repository.NewPayloadCache(rdb, quizRepo, cfg.QuizCacheTTL, log)
	serveLog := repository.NewServeLog(rdb, cfg.ServeLogTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	registrationService := service.NewRegistrationService(studentRepo, log)
	sessionService := service.NewQuizSessionService(
		studentRepo, quizRepo, submissionRepo, payloadCache, serveLog, cfg.ServerTimingFloor, log,
	)
	quizAdminService := service.NewQuizAdminService(quizRepo, payloadCache, cfg.DefaultTimeSeconds, log)
	rosterService := service.NewRosterService(studentRepo, registrationService, cfg.QuizLink, log)
	exportService := service.NewExportService(submissionRepo, cfg.ExportLocation())

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Quiz:  handler.NewQuizHandler(sessionService, registrationService),
		Admin: handler.NewAdminHandler(authService, quizAdminService, rosterService, exportService),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}

	// ─── Prewarm Redis Cache ──────────────────────────────────────────
	// Load the current quiz payload BEFORE accepting traffic so the first
	// wave of link opens does not all miss.
	if quiz, err := quizRepo.GetActive(ctx); err == nil {
		if _, err := payloadCache.Payload(ctx, quiz.ID); err != nil {
			log.Warn().Err(err).Msg("Cache prewarm failed")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	limiters := router.Limiters{
		Quiz:  middleware.NewRateLimiter(cfg.RateLimitPerMinute),
		Login: middleware.NewRateLimiter(cfg.LoginRateLimitPerMinute),
	}
	stopCleanup := make(chan struct{})
	go limiters.Quiz.Cleanup(stopCleanup)
	go limiters.Login.Cleanup(stopCleanup)

	r := router.SetupRouter(authService, limiters, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(stopCleanup)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
