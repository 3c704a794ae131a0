package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type schoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.School, error)
	List(ctx context.Context) ([]models.School, error)
}

// SchoolService maintains the school catalogue.
type SchoolService struct {
	repo   schoolRepository
	logger *zap.Logger
}

// NewSchoolService constructs the service.
func NewSchoolService(repo schoolRepository, logger *zap.Logger) *SchoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, logger: logger}
}

// Create adds a school; names are unique.
func (s *SchoolService) Create(ctx context.Context, name string) (*models.School, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolName is required")
	}
	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, appErrors.Dependency(err, "failed to check school")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "school already exists")
	}
	school := &models.School{SchoolName: name}
	if err := s.repo.Create(ctx, school); err != nil {
		return nil, appErrors.Dependency(err, "failed to create school")
	}
	return school, nil
}

func (s *SchoolService) List(ctx context.Context) ([]models.School, error) {
	schools, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Dependency(err, "failed to list schools")
	}
	return schools, nil
}

func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Dependency(err, "failed to load school")
	}
	return school, nil
}
