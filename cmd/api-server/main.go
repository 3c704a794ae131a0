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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/deck-tracker-api/api/swagger"
	"github.com/noah-isme/deck-tracker-api/internal/app"
	"github.com/noah-isme/deck-tracker-api/internal/handler"
	"github.com/noah-isme/deck-tracker-api/internal/router"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	"github.com/noah-isme/deck-tracker-api/pkg/config"
	"github.com/noah-isme/deck-tracker-api/pkg/database"
	"github.com/noah-isme/deck-tracker-api/pkg/logger"
)

// @title Deck Tracker API
// @version 1.0.0
// @description Answer-sheet deck lifecycle, inventory and analytics
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	a, err := app.New(cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.Migrate(ctx, a.DB); err != nil {
		return err
	}

	var scheduler *service.ReminderScheduler
	if cfg.Reminder.Enabled {
		scheduler, err = service.NewReminderScheduler(a.Reminders, cfg.Reminder.Schedule, a.Location(), logr)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	// Mail workers outlive the signal so shutdown can drain them.
	queue := a.StartMailQueue(context.WithoutCancel(ctx))

	checks := map[string]handler.Pinger{"postgres": a.DB.PingContext}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}

	engine := router.NewRouter(router.Deps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Tokens:         a.Auth,
		Audit:          a.Audits,
		Metrics:        a.Metrics,
		Auth:           handler.NewAuthHandler(a.Auth),
		Decks:          handler.NewDeckHandler(a.Lifecycle, a.Decks, a.Labels, a.Reminders),
		Uploads:        handler.NewUploadHandler(a.Imports, a.Exports, cfg.Import.MaxFileSizeBytes),
		Analytics:      handler.NewAnalyticsHandler(a.Analytics),
		Settings:       handler.NewSettingsHandler(a.Templates, a.SMTP, a.Schools),
		Users:          handler.NewUserHandler(a.UsersSvc),
		Health:         handler.NewMetricsHandler(a.Metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Warn("http shutdown", zap.Error(err))
		}
		if err := queue.Drain(shutdownCtx); err != nil {
			logr.Warn("mail queue not drained", zap.Int64("pending", queue.Pending()), zap.Error(err))
		}
		queue.Stop()
		return nil
	})

	if scheduler != nil {
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	g.Go(func() error { return cleanupLoop(gctx, a.Exports, cfg.Reports.CleanupInterval, logr) })

	return g.Wait()
}

func cleanupLoop(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := exports.Cleanup(0); err != nil {
				logr.Warn("report cleanup failed", zap.Error(err))
			}
		}
	}
}
