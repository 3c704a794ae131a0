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

// SchoolRepository persists the school catalogue.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs the repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Create inserts a school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	school.CreatedAt = now
	school.UpdatedAt = now
	const query = `INSERT INTO schools (id, school_name, created_at, updated_at) VALUES (:id, :school_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// ExistsByName reports whether a school with name exists, ignoring case.
func (r *SchoolRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM schools WHERE LOWER(school_name) = LOWER($1))`, name); err != nil {
		return false, fmt.Errorf("check school name: %w", err)
	}
	return exists, nil
}

// FindByID returns one school.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	var school models.School
	if err := r.db.GetContext(ctx, &school, `SELECT id, school_name, created_at, updated_at FROM schools WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &school, nil
}

// List returns all schools alphabetically.
func (r *SchoolRepository) List(ctx context.Context) ([]models.School, error) {
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, `SELECT id, school_name, created_at, updated_at FROM schools ORDER BY school_name ASC`); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}
