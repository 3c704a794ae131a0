// Package app assembles repositories and services from configuration. It is
// shared by the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/repository"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	"github.com/noah-isme/deck-tracker-api/pkg/cache"
	"github.com/noah-isme/deck-tracker-api/pkg/config"
	"github.com/noah-isme/deck-tracker-api/pkg/database"
	"github.com/noah-isme/deck-tracker-api/pkg/jobs"
	"github.com/noah-isme/deck-tracker-api/pkg/mailer"
	"github.com/noah-isme/deck-tracker-api/pkg/storage"
)

const cacheNamespace = "deck-tracker"

// App holds every long-lived dependency.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Users  *repository.UserRepository
	Audits *repository.AuditRepository

	Metrics       *service.MetricsService
	Cache         *service.CacheService
	Exports       *service.ExportService
	Auth          *service.AuthService
	UsersSvc      *service.UserService
	Decks         *service.DeckService
	Lifecycle     *service.LifecycleService
	Imports       *service.ImportService
	Labels        *service.LabelService
	Notifications *service.NotificationService
	Reminders     *service.ReminderService
	Templates     *service.TemplateService
	SMTP          *service.SMTPService
	Schools       *service.SchoolService
	Analytics     *service.AnalyticsService
}

// New connects postgres (and redis when reachable) and builds the services.
// Notifications are delivered synchronously until StartMailQueue is called.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db}
	a.Metrics = service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Analytics.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		} else {
			a.Redis = client
			cacheRepo = repository.NewCacheRepository(client, cacheNamespace, logger)
		}
	}
	a.Cache = service.NewCacheService(cacheRepo, a.Metrics, cfg.Analytics.CacheTTL, logger, cfg.Analytics.Enabled)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	a.Exports = service.NewExportService(store, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.ResultTTL}, logger)

	validate := validator.New()
	a.Users = repository.NewUserRepository(db)
	a.Audits = repository.NewAuditRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	templateRepo := repository.NewEmailTemplateRepository(db)

	a.Auth = service.NewAuthService(a.Users, a.Audits, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cacheNamespace,
	})
	a.UsersSvc = service.NewUserService(a.Users, a.Audits, validate, logger)
	a.Templates = service.NewTemplateService(templateRepo, validate, logger)
	a.SMTP = service.NewSMTPService(repository.NewSMTPRepository(db), cfg.Mail.SenderName, validate, logger)
	a.Schools = service.NewSchoolService(repository.NewSchoolRepository(db), logger)

	a.Notifications = service.NewNotificationService(templateRepo, a.SMTP, mailer.NewSMTPSender(), logger,
		service.WithNotificationFormat(cfg.Mail.Timezone, cfg.Mail.DateLayout),
		service.WithNotificationMetrics(a.Metrics),
	)
	a.Lifecycle = service.NewLifecycleService(deckRepo, logger,
		service.WithLifecycleNotifier(a.Notifications),
		service.WithLifecycleCache(a.Cache),
		service.WithLifecycleMetrics(a.Metrics),
	)
	a.Decks = service.NewDeckService(deckRepo, a.Users, a.Cache, validate, logger)
	a.Imports = service.NewImportService(a.Users, deckRepo, a.Exports, logger,
		service.WithImportCache(a.Cache),
		service.WithImportMetrics(a.Metrics),
	)
	a.Labels = service.NewLabelService(deckRepo, nil, a.Exports, logger)
	a.Reminders = service.NewReminderService(deckRepo, a.Notifications, cfg.Reminder.OverdueAfter, logger)
	a.Analytics = service.NewAnalyticsService(repository.NewAnalyticsRepository(db), a.Users, a.Cache, logger)

	return a, nil
}

// StartMailQueue moves notification delivery onto a background worker pool.
// The returned queue must be stopped by the caller.
func (a *App) StartMailQueue(ctx context.Context) *jobs.Queue {
	queue := jobs.NewQueue("mail", a.Notifications.HandleJob, jobs.QueueConfig{
		Workers:    a.Config.Mail.Workers,
		BufferSize: a.Config.Mail.BufferSize,
		MaxRetries: a.Config.Mail.Retries,
		RetryDelay: a.Config.Mail.RetryDelay,
		Logger:     a.Logger,
	})
	queue.Start(ctx)
	a.Notifications.AttachQueue(queue)
	return queue
}

// Location is the zone reminders and mail timestamps are computed in.
func (a *App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Config.Mail.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Close releases connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("close postgres", zap.Error(err))
	}
}
