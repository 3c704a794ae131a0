package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/export"
)

const (
	labelDateLayout  = "02 January 2006"
	morningExamTime  = "10:00AM"
	eveningExamTime  = "2:00PM"
	defaultLabelPage = 50
	maxLabelPage     = 500
)

type deckLister interface {
	List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, int, error)
}

type labelRenderer interface {
	Render(labels []export.Label) ([]byte, error)
}

// PamphletRequest selects the page of decks to print.
type PamphletRequest struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	ExamName string `form:"examName"`
	Status   string `form:"status"`
}

// PamphletResult carries the rendered PDF and its stored copy.
type PamphletResult struct {
	Filename string
	PDF      []byte
	Count    int
	Download *ExportResult
}

// LabelService prints deck cover labels.
type LabelService struct {
	decks    deckLister
	renderer labelRenderer
	reports  artifactPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewLabelService constructs a LabelService. reports may be nil, in which
// case the PDF is only returned to the caller.
func NewLabelService(decks deckLister, renderer labelRenderer, reports artifactPublisher, logger *zap.Logger) *LabelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewLabelRenderer()
	}
	return &LabelService{decks: decks, renderer: renderer, reports: reports, logger: logger, now: time.Now}
}

// Pamphlets renders labels for one page of decks sorted by course name.
func (s *LabelService) Pamphlets(ctx context.Context, req PamphletRequest) (*PamphletResult, error) {
	filter := models.DeckFilter{Page: req.Page, PageSize: req.Limit, SortBy: "courseName", SortOrder: "asc"}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultLabelPage
	}
	if filter.PageSize > maxLabelPage {
		filter.PageSize = maxLabelPage
	}
	if req.Status != "" {
		status := models.DeckStatus(strings.ToUpper(req.Status))
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown deck status")
		}
		filter.Status = &status
	}

	decks, _, err := s.decks.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Dependency(err, "failed to list decks")
	}
	if len(decks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no decks to print")
	}

	labels := make([]export.Label, 0, len(decks))
	for i := range decks {
		labels = append(labels, labelFor(&decks[i], req.ExamName))
	}
	pdf, err := s.renderer.Render(labels)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render labels")
	}

	id := uuid.NewString()
	result := &PamphletResult{
		Filename: fmt.Sprintf("pamphlets_%s_%s.pdf", s.now().UTC().Format("20060102T150405"), id[:8]),
		PDF:      pdf,
		Count:    len(labels),
	}
	if s.reports != nil {
		download, err := s.reports.Publish(id, result.Filename, pdf)
		if err != nil {
			s.logger.Warn("failed to store pamphlets", zap.Error(err))
		} else {
			result.Download = download
		}
	}
	return result, nil
}

func labelFor(deck *models.Deck, examName string) export.Label {
	label := export.Label{
		QRCode:       deck.QRCodeString,
		Title:        strings.TrimSpace(examName),
		CourseCode:   deck.CourseCode,
		CourseName:   deck.CourseName,
		ProgramName:  deck.ProgramName,
		School:       deck.School,
		Semester:     deck.Semester,
		Room:         deck.RoomNumber,
		Packet:       deck.PacketNumber,
		Rack:         deck.RackNumber,
		StudentCount: deck.StudentCount,
		Evaluator:    deck.Evaluator.Name(),
		ExamDate:     time.Unix(deck.ExamDate, 0).UTC().Format(labelDateLayout),
		ExamTime:     eveningExamTime,
	}
	if deck.ShiftOfExam == models.ShiftMorning {
		label.ExamTime = morningExamTime
	}
	return label
}
