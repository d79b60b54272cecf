// cmd/assessment-server/main.go
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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentinel-assessment/internal/anomaly"
	"sentinel-assessment/internal/audit"
	"sentinel-assessment/internal/common/camunda"
	"sentinel-assessment/internal/common/config"
	"sentinel-assessment/internal/common/database"
	"sentinel-assessment/internal/common/logger"
	"sentinel-assessment/internal/common/observability"
	"sentinel-assessment/internal/report"
	"sentinel-assessment/internal/web"
	sa "sentinel-assessment/internal/workers/assessment/score-assessment"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assessment server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	gin.SetMode(cfg.Server.Mode)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	checks := map[string]web.ReadinessCheck{}

	// --- Model artifact ---
	model, err := anomaly.LoadModel(cfg.Model.Path)
	if err != nil {
		if cfg.Model.Required {
			zapLog.Fatal("model artifact load failed", zap.Error(err))
		}
		zapLog.Warn("model artifact not loaded", zap.Error(err))
	} else {
		zapLog.Info("Model artifact loaded",
			zap.String("path", model.Path),
			zap.String("checksum", model.Checksum),
		)
	}

	// --- Init PostgreSQL with retry ---
	var recorder *audit.PostgresRecorder
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		recorder = audit.NewPostgresRecorder(pg.DB)
		if err := recorder.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema creation failed", zap.Error(err))
		}
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis with retry ---
	var cache report.Cache
	if cfg.Database.Redis.Enabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()

		cache = report.NewRedisCache(redis, cfg.Cache.ReportTTLDuration())
		checks["redis"] = redis.Ping
		zapLog.Info("Redis connected successfully")
	}

	renderer := report.NewRenderer(cfg.Report, report.WithCompression(cfg.Report.Compress))
	reports := report.NewService(renderer, cache, obs, log)

	// --- Init Zeebe client and workers ---
	var workers []*camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		checks["camunda"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		if wcfg := config.GetWorkerConfig(cfg, sa.TaskType); wcfg.Enabled {
			workerCfg := sa.LoadConfig(wcfg)
			var rec audit.Recorder
			if recorder != nil {
				rec = recorder
			}
			handler := sa.NewHandler(workerCfg, rec, obs, log)
			workers = append(workers, camunda.NewWorker(
				zeebe.GetClient(), sa.TaskType, workerCfg.MaxJobsActive, workerCfg.Timeout, handler, log,
			))
		} else {
			zapLog.Info("worker disabled", zap.String("taskType", sa.TaskType))
		}
	}

	// --- HTTP server ---
	deps := web.Deps{
		Reports: reports,
		Model:   model,
		Obs:     obs,
		Logger:  log,
		Checks:  checks,
	}
	if recorder != nil {
		deps.Recorder = recorder
		deps.Stats = recorder
	}

	server, err := web.NewServer(cfg, deps)
	if err != nil {
		zapLog.Fatal("web server setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Assessment server stopped gracefully")
}
