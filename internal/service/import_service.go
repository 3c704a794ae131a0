package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/export"
)

// Sheet column headers, matched case-insensitively.
const (
	ColumnEvaluatorEmail = "Evaluator Email"
	ColumnDate           = "Date"
	ColumnTime           = "Time"
	ColumnProgramName    = "Program Name"
	ColumnCourseCode     = "Course Code"
	ColumnCourse         = "Course"
	ColumnSchool         = "School"
	ColumnPacket         = "Packet No."
	ColumnSemester       = "Sem"
	ColumnStudentCount   = "ST.Count"
	ColumnRack           = "Rack No."
	ColumnRoom           = "Room"
	ColumnCohort         = "Cohort"

	errorColumn = "error"
)

// Row failure reasons written to the error report.
const (
	ReasonEvaluatorMissing = "Evaluator Doesn't Exist"
	ReasonInvalidDate      = "Invalid Date"
	ReasonInvalidCount     = "Invalid Student Count"
	ReasonCancelled        = "Import Cancelled"
)

type evaluatorLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type deckInserter interface {
	Create(ctx context.Context, deck *models.Deck) error
}

type csvCodec interface {
	Read(r io.Reader) (export.Dataset, error)
	Render(data export.Dataset) ([]byte, error)
}

type artifactPublisher interface {
	Publish(id, filename string, payload []byte) (*ExportResult, error)
}

// ImportService reconciles uploaded sheets into decks, one row at a time,
// and publishes a CSV of the rows it could not insert.
type ImportService struct {
	users    evaluatorLookup
	decks    deckInserter
	csv      csvCodec
	reports  artifactPublisher
	cache    cacheInvalidator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	newToken func() string
}

// ImportServiceOption configures the service.
type ImportServiceOption func(*ImportService)

// WithImportCache invalidates analytics after successful inserts.
func WithImportCache(c cacheInvalidator) ImportServiceOption {
	return func(s *ImportService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithImportMetrics counts imported rows.
func WithImportMetrics(m *MetricsService) ImportServiceOption {
	return func(s *ImportService) { s.metrics = m }
}

// WithImportClock overrides the time source used in report names.
func WithImportClock(now func() time.Time) ImportServiceOption {
	return func(s *ImportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewImportService constructs the reconciler.
func NewImportService(users evaluatorLookup, decks deckInserter, reports artifactPublisher, logger *zap.Logger, opts ...ImportServiceOption) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ImportService{
		users:    users,
		decks:    decks,
		csv:      export.NewCSVExporter(),
		reports:  reports,
		logger:   logger,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// ImportCSV parses an uploaded sheet and imports every row.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	headers, rows, err := s.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, headers, rows)
}

// ParseCSV maps sheet columns onto import rows. The returned headers keep the
// upload's column order for the error report.
func (s *ImportService) ParseCSV(r io.Reader) ([]string, []models.ImportRow, error) {
	data, err := s.csv.Read(r)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable csv file")
	}
	canonical := make(map[string]string, len(data.Headers))
	for _, h := range data.Headers {
		canonical[strings.ToLower(h)] = h
	}
	rows := make([]models.ImportRow, 0, len(data.Rows))
	for i, raw := range data.Rows {
		cell := func(column string) string {
			return strings.TrimSpace(raw[canonical[strings.ToLower(column)]])
		}
		rows = append(rows, models.ImportRow{
			Line:           lineOf(data, i),
			EvaluatorEmail: cell(ColumnEvaluatorEmail),
			Date:           cell(ColumnDate),
			Time:           cell(ColumnTime),
			ProgramName:    cell(ColumnProgramName),
			CourseCode:     cell(ColumnCourseCode),
			CourseName:     cell(ColumnCourse),
			School:         cell(ColumnSchool),
			PacketNumber:   cell(ColumnPacket),
			Semester:       cell(ColumnSemester),
			StudentCount:   cell(ColumnStudentCount),
			RackNumber:     cell(ColumnRack),
			RoomNumber:     cell(ColumnRoom),
			Cohort:         cell(ColumnCohort),
			Raw:            raw,
		})
	}
	return data.Headers, rows, nil
}

// ImportRows inserts rows sequentially. A failed row is recorded and never
// stops the batch.
func (s *ImportService) ImportRows(ctx context.Context, headers []string, rows []models.ImportRow) (*models.ImportResult, error) {
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rows to import")
	}

	result := &models.ImportResult{Submitted: len(rows)}
	evaluators := map[string]*models.User{}
	var failed []models.ImportRow
	fail := func(row models.ImportRow, reason string) {
		result.Failed++
		result.Failures = append(result.Failures, models.ImportFailure{Line: row.Line, Reason: reason})
		if row.Raw == nil {
			row.Raw = map[string]string{}
		}
		row.Raw[errorColumn] = reason
		failed = append(failed, row)
	}

	for i, row := range rows {
		if ctx.Err() != nil {
			s.logger.Warn("deck import cancelled", zap.Int("processed", i), zap.Int("remaining", len(rows)-i))
			for _, rest := range rows[i:] {
				fail(rest, ReasonCancelled)
			}
			break
		}
		reason := s.importRow(ctx, row, evaluators)
		if reason == "" {
			result.Inserted++
			continue
		}
		fail(row, reason)
	}

	// Inserted decks stay committed after a cancel.
	ctx = context.WithoutCancel(ctx)
	if len(failed) > 0 {
		if err := s.publishReport(headers, failed, result); err != nil {
			s.logger.Error("publish import error report", zap.Error(err))
		}
	}

	s.metrics.ObserveImport(result.Inserted, result.Failed)
	if result.Inserted > 0 && s.cache != nil {
		s.cache.Invalidate(ctx, analyticsCachePattern)
	}
	s.logger.Info("deck import finished",
		zap.Int("submitted", result.Submitted), zap.Int("inserted", result.Inserted), zap.Int("failed", result.Failed))
	return result, nil
}

// importRow returns the failure reason, or "" when the deck was inserted.
func (s *ImportService) importRow(ctx context.Context, row models.ImportRow, evaluators map[string]*models.User) string {
	email := strings.ToLower(strings.TrimSpace(row.EvaluatorEmail))
	if email == "" {
		return ReasonEvaluatorMissing
	}
	evaluator, ok := evaluators[email]
	if !ok {
		user, err := s.users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			s.logger.Warn("evaluator lookup failed", zap.Int("line", row.Line), zap.Error(err))
			return "evaluator lookup failed: " + err.Error()
		default:
			evaluator = user
		}
		evaluators[email] = evaluator
	}
	if evaluator == nil {
		return ReasonEvaluatorMissing
	}

	examDate, err := parseExamDate(row.Date)
	if err != nil {
		return ReasonInvalidDate
	}
	studentCount := 0
	if row.StudentCount != "" {
		studentCount, err = strconv.Atoi(row.StudentCount)
		if err != nil || studentCount < 0 {
			return ReasonInvalidCount
		}
	}

	deck := &models.Deck{
		ExamDate:     examDate,
		ProgramName:  row.ProgramName,
		CourseCode:   row.CourseCode,
		CourseName:   row.CourseName,
		School:       row.School,
		Semester:     row.Semester,
		RoomNumber:   row.RoomNumber,
		PacketNumber: row.PacketNumber,
		RackNumber:   row.RackNumber,
		StudentCount: studentCount,
		Cohort:       row.Cohort,
		ShiftOfExam:  shiftFromCode(row.Time),
		EvaluatorID:  evaluator.ID,
		StatusOfDeck: models.DeckStatusPending,
	}
	deck.QRCodeString = buildQRCode(qrParts{
		School:       row.School,
		Date:         row.Date,
		Shift:        row.Time,
		CourseCode:   row.CourseCode,
		Room:         row.RoomNumber,
		Program:      row.ProgramName,
		StudentCount: row.StudentCount,
		Packet:       row.PacketNumber,
	}, s.newToken())

	if err := s.decks.Create(ctx, deck); err != nil {
		s.logger.Warn("insert imported deck", zap.Int("line", row.Line), zap.Error(err))
		return err.Error()
	}
	return ""
}

func (s *ImportService) publishReport(headers []string, failed []models.ImportRow, result *models.ImportResult) error {
	if s.reports == nil {
		return fmt.Errorf("no report storage configured")
	}
	columns := append([]string{}, headers...)
	if !containsString(headers, errorColumn) {
		columns = append(columns, errorColumn)
	}
	data := export.Dataset{Headers: columns, Rows: make([]map[string]string, 0, len(failed))}
	for _, row := range failed {
		data.Rows = append(data.Rows, row.Raw)
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return err
	}

	id := strings.ReplaceAll(s.newToken(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("import_errors_%s_%s.csv", s.now().UTC().Format("20060102T150405"), id)
	published, err := s.reports.Publish(id, name, payload)
	if err != nil {
		return err
	}
	result.ErrorReportRef = published.RelativePath
	result.ErrorReportURL = published.URL
	return nil
}

// lineOf is the physical sheet line of data row i, header being line 1.
func lineOf(data export.Dataset, i int) int {
	if i < len(data.Lines) {
		return data.Lines[i]
	}
	return i + 2
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
