package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type deckRepository interface {
	Create(ctx context.Context, deck *models.Deck) error
	FindByQRCode(ctx context.Context, qr string) (*models.Deck, error)
	FindByID(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, int, error)
	Update(ctx context.Context, id string, patch models.DeckPatch) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// DeckService manages the deck inventory outside of lifecycle transitions.
type DeckService struct {
	decks     deckRepository
	users     userFinder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeckService constructs the service.
func NewDeckService(decks deckRepository, users userFinder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *DeckService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DeckService{decks: decks, users: users, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("exam_shift", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "", "M", "E", string(models.ShiftMorning), string(models.ShiftEvening):
			return true
		default:
			return false
		}
	})
	return svc
}

// CreateDeckRequest describes a manually registered deck.
type CreateDeckRequest struct {
	ExamDate     string `json:"examDate" validate:"required"`
	ProgramName  string `json:"programName" validate:"required"`
	CourseCode   string `json:"courseCode" validate:"required"`
	CourseName   string `json:"courseName" validate:"required"`
	School       string `json:"school" validate:"required"`
	Semester     string `json:"semester"`
	RoomNumber   string `json:"roomNumber" validate:"required"`
	PacketNumber string `json:"packetNumber" validate:"required"`
	RackNumber   string `json:"rackNumber"`
	StudentCount int    `json:"studentCount" validate:"min=0"`
	Cohort       string `json:"cohort"`
	ShiftOfExam  string `json:"shiftOfExam" validate:"exam_shift"`
	EvaluatorID  string `json:"evaluatorId" validate:"required"`
}

// UpdateDeckRequest carries optional descriptive edits.
type UpdateDeckRequest struct {
	ProgramName  *string `json:"programName" validate:"omitempty,min=1"`
	CourseCode   *string `json:"courseCode" validate:"omitempty,min=1"`
	CourseName   *string `json:"courseName" validate:"omitempty,min=1"`
	School       *string `json:"school" validate:"omitempty,min=1"`
	Semester     *string `json:"semester"`
	RoomNumber   *string `json:"roomNumber" validate:"omitempty,min=1"`
	PacketNumber *string `json:"packetNumber" validate:"omitempty,min=1"`
	RackNumber   *string `json:"rackNumber"`
	StudentCount *int    `json:"studentCount" validate:"omitempty,min=0"`
	EvaluatorID  *string `json:"evaluatorId" validate:"omitempty,min=1"`
}

// DeckListRequest mirrors the listing query string.
type DeckListRequest struct {
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
	Search      string
	Status      string
	EvaluatorID string
}

// AddDeck registers a deck in PENDING with no sheets recorded.
func (s *DeckService) AddDeck(ctx context.Context, req CreateDeckRequest) (*models.Deck, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deck payload")
	}
	examDate, err := parseExamDate(req.ExamDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid examDate")
	}
	evaluator, err := s.users.FindByID(ctx, req.EvaluatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluator not found")
		}
		return nil, appErrors.Dependency(err, "failed to load evaluator")
	}

	shift := shiftFromForm(req.ShiftOfExam)
	deck := &models.Deck{
		ExamDate:     examDate,
		ProgramName:  strings.TrimSpace(req.ProgramName),
		CourseCode:   strings.TrimSpace(req.CourseCode),
		CourseName:   strings.TrimSpace(req.CourseName),
		School:       strings.TrimSpace(req.School),
		Semester:     strings.TrimSpace(req.Semester),
		RoomNumber:   strings.TrimSpace(req.RoomNumber),
		PacketNumber: strings.TrimSpace(req.PacketNumber),
		RackNumber:   strings.TrimSpace(req.RackNumber),
		StudentCount: req.StudentCount,
		Cohort:       strings.TrimSpace(req.Cohort),
		ShiftOfExam:  shift,
		EvaluatorID:  evaluator.ID,
		StatusOfDeck: models.DeckStatusPending,
	}
	deck.QRCodeString = buildQRCode(qrParts{
		School:       deck.School,
		Date:         time.Unix(examDate, 0).UTC().Format("2006-01-02"),
		Shift:        shiftCode(shift),
		CourseCode:   deck.CourseCode,
		Room:         deck.RoomNumber,
		Program:      deck.ProgramName,
		StudentCount: strconv.Itoa(deck.StudentCount),
		Packet:       deck.PacketNumber,
	}, "")

	if err := s.decks.Create(ctx, deck); err != nil {
		s.logger.Error("create deck", zap.Error(err))
		return nil, appErrors.Dependency(err, "failed to create deck")
	}
	deck.Evaluator = evaluator.Ref()
	s.invalidate(ctx)
	return deck, nil
}

// GetByQRCode returns the deck with the given scannable identifier.
func (s *DeckService) GetByQRCode(ctx context.Context, qr string) (*models.Deck, error) {
	deck, err := s.decks.FindByQRCode(ctx, strings.TrimSpace(qr))
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load deck")
	}
	return deck, nil
}

// List returns a page of decks.
func (s *DeckService) List(ctx context.Context, req DeckListRequest) ([]models.Deck, *models.Pagination, error) {
	filter := models.DeckFilter{
		Search:      req.Search,
		EvaluatorID: req.EvaluatorID,
		Page:        req.Page,
		PageSize:    req.Limit,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	if req.Status != "" {
		status := models.DeckStatus(strings.ToUpper(req.Status))
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown deck status")
		}
		filter.Status = &status
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	decks, total, err := s.decks.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Dependency(err, "failed to list decks")
	}
	return decks, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListAssigned returns the decks assigned to evaluatorID.
func (s *DeckService) ListAssigned(ctx context.Context, evaluatorID string, req DeckListRequest) ([]models.Deck, *models.Pagination, error) {
	if strings.TrimSpace(evaluatorID) == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	req.EvaluatorID = evaluatorID
	decks, pagination, err := s.List(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if pagination.TotalCount == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no decks assigned")
	}
	return decks, pagination, nil
}

// Update edits descriptive fields of a deck.
func (s *DeckService) Update(ctx context.Context, id string, req UpdateDeckRequest) (*models.Deck, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deck payload")
	}
	patch := models.DeckPatch{
		ProgramName:  trimPtr(req.ProgramName),
		CourseCode:   trimPtr(req.CourseCode),
		CourseName:   trimPtr(req.CourseName),
		School:       trimPtr(req.School),
		Semester:     trimPtr(req.Semester),
		RoomNumber:   trimPtr(req.RoomNumber),
		PacketNumber: trimPtr(req.PacketNumber),
		RackNumber:   trimPtr(req.RackNumber),
		StudentCount: req.StudentCount,
		EvaluatorID:  trimPtr(req.EvaluatorID),
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if patch.EvaluatorID != nil {
		if _, err := s.users.FindByID(ctx, *patch.EvaluatorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluator not found")
			}
			return nil, appErrors.Dependency(err, "failed to load evaluator")
		}
	}
	if err := s.decks.Update(ctx, id, patch); err != nil {
		return nil, s.notFoundOr(err, "failed to update deck")
	}
	deck, err := s.decks.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load deck")
	}
	s.invalidate(ctx)
	return deck, nil
}

// DeleteByID removes one deck.
func (s *DeckService) DeleteByID(ctx context.Context, id string) error {
	if err := s.decks.DeleteByID(ctx, id); err != nil {
		return s.notFoundOr(err, "failed to delete deck")
	}
	s.invalidate(ctx)
	return nil
}

// DeleteAll purges the inventory and returns how many decks were removed.
func (s *DeckService) DeleteAll(ctx context.Context) (int64, error) {
	removed, err := s.decks.DeleteAll(ctx)
	if err != nil {
		return 0, appErrors.Dependency(err, "failed to delete decks")
	}
	s.logger.Warn("deck inventory purged", zap.Int64("removed", removed))
	s.invalidate(ctx)
	return removed, nil
}

func (s *DeckService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, analyticsCachePattern)
	}
}

func (s *DeckService) notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "deck not found")
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Dependency(err, message)
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
