package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/quizlink-backend/internal/config"
	"github.com/stemsi/quizlink-backend/internal/database"
	"github.com/stemsi/quizlink-backend/internal/logger"
	"github.com/stemsi/quizlink-backend/internal/repository"
	"github.com/stemsi/quizlink-backend/internal/service"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quizctl",
		Short:         "Operator tooling for the quiz backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newImportRosterCmd(),
		newUploadQuestionsCmd(),
		newExportResultsCmd(),
		newExportLinksCmd(),
		newQuizStatusCmd(),
		newHashPasswordCmd(),
	)
	return cmd
}

// app holds the services a subcommand needs. close releases connections.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	pool     *pgxpool.Pool
	rdb      *redis.Client
	quizzes  *service.QuizAdminService
	roster   *service.RosterService
	exporter *service.ExportService
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	studentRepo := repository.NewStudentRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	payloads := repository.NewPayloadCache(rdb, quizRepo, cfg.QuizCacheTTL, log)
	registration := service.NewRegistrationService(studentRepo, log)

	return &app{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		rdb:      rdb,
		quizzes:  service.NewQuizAdminService(quizRepo, payloads, cfg.DefaultTimeSeconds, log),
		roster:   service.NewRosterService(studentRepo, registration, cfg.QuizLink, log),
		exporter: service.NewExportService(submissionRepo, cfg.ExportLocation()),
	}, nil
}

func (a *app) close() {
	_ = a.rdb.Close()
	a.pool.Close()
}

// withApp runs fn with a connected app bound to the command context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
