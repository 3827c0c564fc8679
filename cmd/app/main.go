// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evalplanner-jobs/internal/config"
	"evalplanner-jobs/internal/domain/ports/adapter"
	aiAdapters "evalplanner-jobs/internal/infra/adapters/ai"
	mailAdapters "evalplanner-jobs/internal/infra/adapters/mail"
	pg "evalplanner-jobs/internal/infra/db/postgres"
	"evalplanner-jobs/internal/infra/logging"
	"evalplanner-jobs/internal/infra/metrics"
	red "evalplanner-jobs/internal/infra/redis"
	"evalplanner-jobs/internal/infra/sched"
	"evalplanner-jobs/internal/infra/web"
	"evalplanner-jobs/internal/infra/worker"
	"evalplanner-jobs/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (offline adapters)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	jobRepo := pg.NewJobRepo(pool, tm)
	settingsRepo := pg.NewSettingsRepo(pool)

	// ---- Use cases ----
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, cfg.AI.DefaultModel)
	jobUC := usecase.NewJobUseCase(jobRepo)

	// ---- Completion adapter ----
	var completion adapter.CompletionAdapter
	if cfg.Runtime.Dev {
		completion = aiAdapters.NewNoopCompletionAdapter()
		logger.Info().Msg("completion adapter: noop (dev)")
	} else {
		completion, err = aiAdapters.NewOpenAICompletionAdapter(cfg.AI.BaseURL, cfg.AI.RequestTimeout, settingsUC.APIKey)
		if err != nil {
			log.Fatalf("completion adapter: %v", err)
		}
		logger.Info().Str("base_url", cfg.AI.BaseURL).Str("default_model", cfg.AI.DefaultModel).Msg("completion adapter: openai")
	}
	completion = aiAdapters.NewRetryingCompletion(completion, cfg.Worker.RetryAttempts, cfg.Worker.RetryBaseDelay, logger)
	completion = aiAdapters.NewLimitedCompletion(completion, cfg.AI.ConcurrentLimit)

	// ---- Mail adapter ----
	var mailer adapter.MailAdapter
	if cfg.Mail.Host == "" {
		mailer = mailAdapters.NewNoopMailAdapter(logger)
		logger.Info().Msg("mail adapter: noop (no smtp host configured)")
	} else {
		mailer = mailAdapters.NewSMTPMailAdapter(cfg.Mail)
	}
	notifUC := usecase.NewNotificationUseCase(mailer, cfg.Mail.Support, logger)

	// ---- Workers ----
	taskPool := worker.NewPool(cfg.AI.ConcurrentLimit, logger)
	taskPool.Start(ctx)
	processor := worker.NewJobProcessor(jobRepo, settingsUC, completion, notifUC, cfg.AI.MaxTokens, cfg.Worker.PollInterval, logger)
	go processor.Start(ctx, taskPool)

	cleanup := sched.NewCleanupWorker(cfg.Worker.CleanupInterval, cfg.Worker.Retention, jobRepo, locker, logger)
	go func() { _ = cleanup.Run(ctx) }()

	// ---- HTTP server ----
	srv := web.NewServer(jobUC, rateLimiter, cfg.Server.SubmitLimit, cfg.Server.SubmitWindow, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Routes()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	cancel()
	taskPool.Stop()
}
