package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/handler"
	"github.com/noah-isme/pnf-horario-api/internal/repository"
	"github.com/noah-isme/pnf-horario-api/internal/service"
	"github.com/noah-isme/pnf-horario-api/pkg/cache"
	"github.com/noah-isme/pnf-horario-api/pkg/config"
	"github.com/noah-isme/pnf-horario-api/pkg/database"
	"github.com/noah-isme/pnf-horario-api/pkg/export"
	"github.com/noah-isme/pnf-horario-api/pkg/jobs"
	"github.com/noah-isme/pnf-horario-api/pkg/logger"
)

// @title PNF Horarios API
// @version 1.0.0
// @description Weekly section timetable editor: slot candidates, class creation and moves, commit and export.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const readHeaderTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
	} else {
		logr.Info("redis disabled, caching snapshots in process memory")
		cacheRepo = repository.NewMemoryCacheRepository(cfg.Timetable.SnapshotCacheTTL)
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.SnapshotCacheTTL, logr)

	schedules := repository.NewScheduleRepository(db)
	classes := repository.NewClassRepository(db)
	units := repository.NewCurricularUnitRepository(db)
	professors := repository.NewProfessorRepository(db)

	snapshots := service.NewSnapshotService(schedules, cacheService, metrics, cfg.Timetable.SnapshotCacheTTL, logr)
	if err := snapshots.Purge(ctx); err != nil {
		logr.Warn("failed to purge cached snapshots", zap.Error(err))
	}

	queue := jobs.NewQueue("snapshots", snapshots.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Timetable.JobWorkers,
		MaxRetries: cfg.Timetable.JobRetries,
		Logger:     logr,
		Observer: func(name string, job jobs.Job, outcome jobs.Outcome) {
			metrics.RecordJob(name, job.Type, string(outcome))
		},
	})
	queue.Start(context.WithoutCancel(ctx))
	defer queue.Stop()

	validate := validator.New()
	exports := service.NewExportService(logr, export.NewCSVExporter(export.WithBOM()), nil, nil)
	timetables := service.NewTimetableService(schedules, classes, units, professors, snapshots, queue, exports, metrics, validate, logr,
		service.TimetableConfig{
			SessionTTL:     cfg.Timetable.SessionTTL,
			CheckClassroom: cfg.Timetable.CheckClassroom,
		})
	catalog := service.NewCatalogService(professors, classes, units, snapshots, validate, logr)
	auth := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	router := newRouter(cfg, logr, routerDeps{
		metrics:   metrics,
		auth:      auth,
		timetable: handler.NewTimetableHandler(timetables),
		catalog:   handler.NewCatalogHandler(catalog),
		readiness: readinessChecks(db, redisClient),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) []handler.ReadinessCheck {
	checks := []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return checks
}
