package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/deck-tracker-api/internal/dto"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/response"
)

type templateStore interface {
	Upsert(ctx context.Context, req service.SaveTemplateRequest) (*models.EmailTemplate, error)
	List(ctx context.Context) ([]models.EmailTemplate, error)
	Get(ctx context.Context, id string) (*models.EmailTemplate, error)
}

type smtpStore interface {
	Get(ctx context.Context) (*models.SMTPSettings, error)
	Upsert(ctx context.Context, req service.SaveSMTPRequest) (*models.SMTPSettings, error)
}

type schoolCatalogue interface {
	Create(ctx context.Context, name string) (*models.School, error)
	List(ctx context.Context) ([]models.School, error)
	Get(ctx context.Context, id string) (*models.School, error)
}

// SettingsHandler exposes mail templates, the SMTP account and the school catalogue.
type SettingsHandler struct {
	templates templateStore
	smtp      smtpStore
	schools   schoolCatalogue
}

// NewSettingsHandler builds a settings handler.
func NewSettingsHandler(templates templateStore, smtp smtpStore, schools schoolCatalogue) *SettingsHandler {
	return &SettingsHandler{templates: templates, smtp: smtp, schools: schools}
}

// ListTemplates godoc
// @Summary List email templates
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /email-templates [get]
func (h *SettingsHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// GetTemplate godoc
// @Summary Get email template
// @Tags Settings
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /email-templates/{id} [get]
func (h *SettingsHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// SaveTemplate godoc
// @Summary Create or replace the template for an event
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.SaveTemplateRequest true "Template"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /email-templates [post]
func (h *SettingsHandler) SaveTemplate(c *gin.Context) {
	var req service.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	tpl, err := h.templates.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// GetSMTP godoc
// @Summary Get SMTP settings
// @Description The password is never returned
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /smtp [get]
func (h *SettingsHandler) GetSMTP(c *gin.Context) {
	settings, err := h.smtp.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// SaveSMTP godoc
// @Summary Replace SMTP settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.SaveSMTPRequest true "SMTP account"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /smtp [put]
func (h *SettingsHandler) SaveSMTP(c *gin.Context) {
	var req service.SaveSMTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid smtp payload"))
		return
	}
	settings, err := h.smtp.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// ListSchools godoc
// @Summary List schools
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *SettingsHandler) ListSchools(c *gin.Context) {
	schools, err := h.schools.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, nil)
}

// GetSchool godoc
// @Summary Get school
// @Tags Settings
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schools/{id} [get]
func (h *SettingsHandler) GetSchool(c *gin.Context) {
	school, err := h.schools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// CreateSchool godoc
// @Summary Add a school
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.CreateSchoolRequest true "School"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schools [post]
func (h *SettingsHandler) CreateSchool(c *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "schoolName is required"))
		return
	}
	school, err := h.schools.Create(c.Request.Context(), req.SchoolName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}
