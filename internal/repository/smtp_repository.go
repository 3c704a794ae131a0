package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

// SMTPRepository stores the single outbound mail account.
type SMTPRepository struct {
	db *sqlx.DB
}

// NewSMTPRepository constructs the repository.
func NewSMTPRepository(db *sqlx.DB) *SMTPRepository {
	return &SMTPRepository{db: db}
}

// Get returns the stored settings or sql.ErrNoRows when none were saved.
func (r *SMTPRepository) Get(ctx context.Context) (*models.SMTPSettings, error) {
	const query = `SELECT email_address, email_password, smtp_host, smtp_port, smtp_secure, updated_at FROM smtp_settings WHERE id = 1`
	var settings models.SMTPSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get smtp settings: %w", err)
	}
	return &settings, nil
}

// Upsert replaces the stored settings.
func (r *SMTPRepository) Upsert(ctx context.Context, settings *models.SMTPSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO smtp_settings (id, email_address, email_password, smtp_host, smtp_port, smtp_secure, updated_at)
VALUES (1, :email_address, :email_password, :smtp_host, :smtp_port, :smtp_secure, :updated_at)
ON CONFLICT (id)
DO UPDATE SET email_address = EXCLUDED.email_address, email_password = EXCLUDED.email_password,
              smtp_host = EXCLUDED.smtp_host, smtp_port = EXCLUDED.smtp_port,
              smtp_secure = EXCLUDED.smtp_secure, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert smtp settings: %w", err)
	}
	return nil
}
