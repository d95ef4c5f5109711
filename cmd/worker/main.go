package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/config"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/db"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("worker: config: %v", err)
	}
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	if !cfg.QueueEnabled() {
		log.Fatalf("worker: REDIS_ADDR is required")
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: database: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Printf("worker: close database: %v", err)
		}
	}()

	sender, err := notify.NewSender(logger.Log, cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("worker: notification sender: %v", err)
	}
	processor := worker.NewProcessor(repository.NewNotificationRepository(dbConn), sender)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Logger:      logger.Log,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.FromContext(ctx).WithError(err).WithField("task", task.Type()).
					WithField("retry", retried).WithField("max_retry", maxRetry).
					Warn("notification task failed")
			}),
		},
	)

	if err := srv.Start(processor.Handler()); err != nil {
		log.Fatalf("worker: start: %v", err)
	}
	logger.Log.WithField("concurrency", cfg.WorkerConcurrency).Info("notification worker started")

	<-ctx.Done()
	srv.Shutdown()
	logger.Log.Info("notification worker stopped")
}
