package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/config"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/db"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/goroutine"
	httpHandlers "github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/middleware"
	httpRouter "github.com/addhory/eviction-tracker-next-app-sub000/internal/http/router"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pdf"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/queue"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/storage"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/worker"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: config: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	if err := common.RegisterValidators(); err != nil {
		log.Fatalf("main: validators: %v", err)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: database: %v", err)
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath)
	if err != nil {
		log.Fatalf("main: migrations: %v", err)
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("migrations applied")
	}

	var rdb *redis.Client
	if cfg.QueueEnabled() {
		rdb, err = db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("main: redis: %v", err)
		}
		defer rdb.Close()
	}

	docStore, storePing, err := openDocumentStore(ctx, cfg)
	if err != nil {
		log.Fatalf("main: document store: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	cache := service.NewCacheService()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	propertyRepo := repository.NewPropertyRepository(dbConn)
	caseRepo := repository.NewCaseRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	documentRepo := repository.NewDocumentRepository(dbConn)
	lawFirmRepo := repository.NewLawFirmRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	analyticsRepo := repository.NewAnalyticsRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)

	// Очередь уведомлений: asynq при настроенном Redis, иначе синхронная доставка.
	var outbox queue.Outbox
	if cfg.QueueEnabled() {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		outbox = queue.NewAsynqOutbox(client, cfg.NotifyMaxRetry)
	} else {
		sender, err := notify.NewSender(logger.Log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("main: notification sender: %v", err)
		}
		outbox = queue.NewInlineOutbox(worker.NewProcessor(notificationRepo, sender).Deliver)
		logger.Log.Warn("REDIS_ADDR is empty, notifications are delivered inline")
	}

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, outbox, hub)
	propertyService := service.NewPropertyService(propertyRepo)
	caseService := service.NewCaseService(caseRepo, propertyRepo, lawFirmRepo, documentRepo, docStore, cache, notificationService)
	jobService := service.NewJobService(jobRepo, documentRepo, caseRepo, userRepo, docStore, cache, notificationService, service.JobOptions{
		DueWindow:      cfg.JobDueWindow,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		PoolCacheTTL:   cfg.JobPoolCacheTTL,
	})
	cartService := service.NewCartService(caseRepo, cache, notificationService)
	referenceService := service.NewReferenceService(lawFirmRepo)
	adminService := service.NewAdminService(userRepo, analyticsRepo, cache, cfg.AnalyticsTTL)

	var renderer pdf.Renderer
	if cfg.ReportRenderer == "playwright" {
		pw := pdf.NewPlaywrightRenderer()
		defer func() {
			if err := pw.Close(); err != nil {
				logger.Log.WithError(err).Warn("main: close report renderer")
			}
		}()
		renderer = pw
	}
	reportService := service.NewReportService(caseRepo, renderer)

	// HTTP хэндлеры.
	healthHandler := httpHandlers.NewHealthHandler(dbConn, rdb)
	if storePing != nil {
		healthHandler.AddCheck("storage", storePing)
	}

	handlers := httpRouter.Handlers{
		Auth:          httpHandlers.NewAuthHandler(authService),
		Profile:       httpHandlers.NewProfileHandler(authService),
		Property:      httpHandlers.NewPropertyHandler(propertyService),
		Case:          httpHandlers.NewCaseHandler(caseService, jobService),
		Job:           httpHandlers.NewJobHandler(jobService),
		Cart:          httpHandlers.NewCartHandler(cartService),
		Reference:     httpHandlers.NewReferenceHandler(referenceService),
		Admin:         httpHandlers.NewAdminHandler(adminService, notificationService),
		Report:        httpHandlers.NewReportHandler(reportService),
		Notification:  httpHandlers.NewNotificationHandler(notificationService),
		WS:            httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:        healthHandler,
		ServeDocFiles: cfg.StorageDriver == "local",
	}

	limits, err := rateLimitStores(rdb)
	if err != nil {
		log.Fatalf("main: rate limit store: %v", err)
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager, limits)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: http server shutdown")
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("http server started")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: http server: %v", err)
	}
}

// openDocumentStore выбирает хранилище документов по STORAGE_DRIVER.
func openDocumentStore(ctx context.Context, cfg *config.Config) (storage.DocumentStore, httpHandlers.HealthCheck, error) {
	if cfg.StorageDriver == "s3" {
		s3, err := storage.NewS3Store(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return s3, s3.Ping, nil
	}
	local, err := storage.NewLocalStore(cfg.DocumentsPath, cfg.MaxUploadBytes(), cfg.PublicFilesBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, nil, nil
}

// rateLimitStores создаёт раздельные счётчики для API и /api/auth.
func rateLimitStores(rdb *redis.Client) (httpRouter.RateLimitStores, error) {
	api, err := middleware.NewLimiterStore(rdb, "evict:rl:api")
	if err != nil {
		return httpRouter.RateLimitStores{}, err
	}
	auth, err := middleware.NewLimiterStore(rdb, "evict:rl:auth")
	if err != nil {
		return httpRouter.RateLimitStores{}, err
	}
	return httpRouter.RateLimitStores{API: api, Auth: auth}, nil
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: close database: %v", err)
	}
}
