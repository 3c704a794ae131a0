package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type templateRepository interface {
	Upsert(ctx context.Context, tpl *models.EmailTemplate) error
	FindByCategory(ctx context.Context, event models.NotificationEvent) (*models.EmailTemplate, error)
	FindByID(ctx context.Context, id string) (*models.EmailTemplate, error)
	List(ctx context.Context) ([]models.EmailTemplate, error)
}

// TemplateService stores the mail template of each notification event.
type TemplateService struct {
	repo      templateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs the service.
func NewTemplateService(repo templateRepository, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TemplateService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("notification_event", func(fl validator.FieldLevel) bool {
		return models.NotificationEvent(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// SaveTemplateRequest describes a template upsert.
type SaveTemplateRequest struct {
	TemplateName string `json:"templateName" validate:"required"`
	TemplateFor  string `json:"templateFor" validate:"required,notification_event"`
	Subject      string `json:"subject" validate:"required"`
	HTML         string `json:"html" validate:"required"`
}

// Upsert creates or replaces the template of an event. Both parts must parse
// as Handlebars.
func (s *TemplateService) Upsert(ctx context.Context, req SaveTemplateRequest) (*models.EmailTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}
	for _, part := range []string{req.Subject, req.HTML} {
		if _, err := raymond.Parse(part); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "template does not compile")
		}
	}
	tpl := &models.EmailTemplate{
		TemplateName: strings.TrimSpace(req.TemplateName),
		Category:     models.NotificationEvent(strings.ToUpper(req.TemplateFor)),
		Subject:      req.Subject,
		HTML:         req.HTML,
	}
	if err := s.repo.Upsert(ctx, tpl); err != nil {
		s.logger.Error("save email template", zap.Error(err))
		return nil, appErrors.Dependency(err, "failed to save template")
	}
	return tpl, nil
}

// List returns every stored template.
func (s *TemplateService) List(ctx context.Context) ([]models.EmailTemplate, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Dependency(err, "failed to list templates")
	}
	return items, nil
}

// Get returns the template with the given id.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.EmailTemplate, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	return tpl, templateLookupError(err)
}

// GetByCategory returns the template bound to event.
func (s *TemplateService) GetByCategory(ctx context.Context, event models.NotificationEvent) (*models.EmailTemplate, error) {
	if !event.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown template category")
	}
	tpl, err := s.repo.FindByCategory(ctx, event)
	return tpl, templateLookupError(err)
}

func templateLookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "template not found")
	}
	return appErrors.Dependency(err, "failed to load template")
}
