package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

const templateColumns = `id, template_name, category, subject, html, created_at, updated_at`

// EmailTemplateRepository persists notification templates, one per category.
type EmailTemplateRepository struct {
	db *sqlx.DB
}

// NewEmailTemplateRepository constructs the repository.
func NewEmailTemplateRepository(db *sqlx.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

// Upsert inserts tpl or replaces the template already stored for its category.
func (r *EmailTemplateRepository) Upsert(ctx context.Context, tpl *models.EmailTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	query := `INSERT INTO email_templates (` + templateColumns + `)
VALUES (:id, :template_name, :category, :subject, :html, :created_at, :updated_at)
ON CONFLICT (category)
DO UPDATE SET template_name = EXCLUDED.template_name, subject = EXCLUDED.subject, html = EXCLUDED.html, updated_at = EXCLUDED.updated_at
RETURNING ` + templateColumns
	rows, err := r.db.NamedQueryContext(ctx, query, tpl)
	if err != nil {
		return fmt.Errorf("upsert email template: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("upsert email template: %w", err)
		}
		return fmt.Errorf("upsert email template: no row returned")
	}
	if err := rows.StructScan(tpl); err != nil {
		return fmt.Errorf("scan email template: %w", err)
	}
	return nil
}

// FindByCategory returns the template used for event.
func (r *EmailTemplateRepository) FindByCategory(ctx context.Context, event models.NotificationEvent) (*models.EmailTemplate, error) {
	return r.findOne(ctx, "category", string(event))
}

// FindByID returns one template.
func (r *EmailTemplateRepository) FindByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	return r.findOne(ctx, "id", id)
}

func (r *EmailTemplateRepository) findOne(ctx context.Context, column, value string) (*models.EmailTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM email_templates WHERE %s = $1`, templateColumns, column)
	var tpl models.EmailTemplate
	if err := r.db.GetContext(ctx, &tpl, query, value); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find email template: %w", err)
	}
	return &tpl, nil
}

// List returns every template ordered by category.
func (r *EmailTemplateRepository) List(ctx context.Context) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := r.db.SelectContext(ctx, &templates, `SELECT `+templateColumns+` FROM email_templates ORDER BY category ASC`); err != nil {
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	return templates, nil
}
