package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/mailer"
)

type smtpRepository interface {
	Get(ctx context.Context) (*models.SMTPSettings, error)
	Upsert(ctx context.Context, settings *models.SMTPSettings) error
}

// SMTPService manages the stored mail account and hands it to the
// notification dispatcher on every send.
type SMTPService struct {
	repo       smtpRepository
	senderName string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSMTPService constructs the service. senderName is the From display name.
func NewSMTPService(repo smtpRepository, senderName string, validate *validator.Validate, logger *zap.Logger) *SMTPService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPService{repo: repo, senderName: senderName, validator: validate, logger: logger}
}

// SaveSMTPRequest describes the mail account.
type SaveSMTPRequest struct {
	EmailAddress  string `json:"emailAddress" validate:"required,email"`
	EmailPassword string `json:"emailPassword" validate:"required"`
	SMTPHost      string `json:"smtpHost" validate:"required,hostname_rfc1123|ip"`
	SMTPPort      int    `json:"smtpPort" validate:"required,min=1,max=65535"`
	SMTPSecure    bool   `json:"smtpSecure"`
}

// Get returns the stored settings; the password is never serialised.
func (s *SMTPService) Get(ctx context.Context) (*models.SMTPSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "smtp settings not configured")
		}
		return nil, appErrors.Dependency(err, "failed to load smtp settings")
	}
	return settings, nil
}

// Upsert replaces the stored mail account.
func (s *SMTPService) Upsert(ctx context.Context, req SaveSMTPRequest) (*models.SMTPSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid smtp settings")
	}
	settings := &models.SMTPSettings{
		EmailAddress:  strings.TrimSpace(req.EmailAddress),
		EmailPassword: req.EmailPassword,
		SMTPHost:      strings.TrimSpace(req.SMTPHost),
		SMTPPort:      req.SMTPPort,
		SMTPSecure:    req.SMTPSecure,
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		s.logger.Error("save smtp settings", zap.Error(err))
		return nil, appErrors.Dependency(err, "failed to save smtp settings")
	}
	s.logger.Info("smtp settings updated", zap.String("host", settings.SMTPHost))
	return settings, nil
}

// MailSettings implements SMTPConfigProvider.
func (s *SMTPService) MailSettings(ctx context.Context) (mailer.Settings, error) {
	stored, err := s.repo.Get(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return mailer.Settings{}, ErrMailNotConfigured
	}
	if err != nil {
		return mailer.Settings{}, err
	}
	if stored.SMTPHost == "" || stored.EmailAddress == "" {
		return mailer.Settings{}, ErrMailNotConfigured
	}
	return mailer.Settings{
		Host:     stored.SMTPHost,
		Port:     stored.SMTPPort,
		Username: stored.EmailAddress,
		Password: stored.EmailPassword,
		Secure:   stored.SMTPSecure,
		FromName: s.senderName,
	}, nil
}
