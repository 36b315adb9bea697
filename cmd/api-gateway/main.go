package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/preschool-adp-api/api/swagger"
	"github.com/noah-isme/preschool-adp-api/internal/handler"
	internalmiddleware "github.com/noah-isme/preschool-adp-api/internal/middleware"
	"github.com/noah-isme/preschool-adp-api/internal/repository"
	"github.com/noah-isme/preschool-adp-api/internal/service"
	"github.com/noah-isme/preschool-adp-api/pkg/cache"
	"github.com/noah-isme/preschool-adp-api/pkg/config"
	"github.com/noah-isme/preschool-adp-api/pkg/database"
	"github.com/noah-isme/preschool-adp-api/pkg/jobs"
	"github.com/noah-isme/preschool-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/preschool-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/preschool-adp-api/pkg/middleware/requestid"
	timeoutmiddleware "github.com/noah-isme/preschool-adp-api/pkg/middleware/timeout"
	"github.com/noah-isme/preschool-adp-api/pkg/storage"
)

// @title Preschool ADP API
// @version 1.0.0
// @description Option catalog and curriculum scheduler for preschool classes
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, option cache disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheStore := repository.NewCacheRepository(redisClient)
	defer cacheStore.Close()
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled && redisClient != nil)

	auditRepo := repository.NewAuditRepository(db)
	templateRepo := repository.NewCurriculumTemplateRepository(db)
	itemRepo := repository.NewCurriculumItemRepository(db)
	executionRepo := repository.NewCurriculumExecutionRepository(db)

	optionSvc := service.NewOptionService(repository.NewConfigFieldRepository(db), cacheSvc, auditRepo, validate, logr, service.OptionServiceConfig{
		CacheTTL:        cfg.Catalog.CacheTTL,
		KnownCategories: cfg.Catalog.KnownCategories,
	})
	curriculumSvc := service.NewCurriculumService(templateRepo, itemRepo, repository.NewTimeSlotRepository(db), validate, logr)
	assignmentSvc := service.NewAssignmentService(repository.NewCurriculumAssignmentRepository(db), templateRepo, auditRepo, validate, logr)
	schedulerSvc := service.NewSchedulerService(itemRepo, cfg.Curriculum.WeekMode, metrics, logr)
	executionSvc := service.NewExecutionService(executionRepo, itemRepo, metrics, validate, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	handlers := handler.Handlers{
		Options:     handler.NewOptionHandler(optionSvc),
		Curriculum:  handler.NewCurriculumHandler(curriculumSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Schedule:    handler.NewScheduleHandler(schedulerSvc, executionSvc),
	}

	if cfg.Exports.Enabled {
		queue, err := startExports(ctx, cfg, db, templateRepo, itemRepo, executionRepo, metrics, validate, logr, &handlers)
		if err != nil {
			logr.Fatal("failed to start exports", zap.Error(err))
		}
		defer queue.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	health := handler.NewHealthHandler(metrics, db, cacheStore)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	r.GET("/metrics/summary", health.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, timeoutmiddleware.Middleware(cfg.RequestTimeout))
	handler.RegisterRoutes(api, authSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "week_mode", cfg.Curriculum.WeekMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startExports wires the export pipeline and mounts its handler.
func startExports(
	ctx context.Context,
	cfg *config.Config,
	db *sqlx.DB,
	templates *repository.CurriculumTemplateRepository,
	items *repository.CurriculumItemRepository,
	executions *repository.CurriculumExecutionRepository,
	metrics *service.MetricsService,
	validate *validator.Validate,
	logr *zap.Logger,
	handlers *handler.Handlers,
) (*jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	jobRepo := repository.NewExportJobRepository(db)
	exporter := service.NewExportService(executions, templates, items, store, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)
	jobSvc := service.NewExportJobService(jobRepo, templates, nil, exporter, metrics, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	worker := service.NewExportWorker(jobRepo, exporter, metrics, logr)

	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		OnFailure:  jobSvc.HandleFailure,
		Logger:     logr,
	})
	jobSvc.SetQueue(queue)
	queue.Start(ctx)

	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)

	handlers.Exports = handler.NewExportHandler(jobSvc, logr)
	return queue, nil
}
