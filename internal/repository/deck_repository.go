package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

const deckColumns = `d.id, d.exam_date, d.program_name, d.course_code, d.course_name, d.school, d.semester,
       d.room_number, d.packet_number, d.rack_number, d.student_count, d.cohort, d.shift_of_exam,
       d.evaluator_id, d.number_of_answer_sheets, d.status_of_deck, d.qr_code_string,
       d.pick_up_timestamp, d.drop_timestamp, d.created_at, d.updated_at,
       COALESCE(u.first_name, '') AS evaluator_first_name, COALESCE(u.last_name, '') AS evaluator_last_name,
       COALESCE(u.email, '') AS evaluator_email`

const deckFrom = ` FROM decks d LEFT JOIN users u ON u.id = d.evaluator_id`

var deckSortColumns = map[string]string{
	"courseName":   "d.course_name",
	"courseCode":   "d.course_code",
	"programName":  "d.program_name",
	"school":       "d.school",
	"semester":     "d.semester",
	"examDate":     "d.exam_date",
	"statusOfDeck": "d.status_of_deck",
	"packetNumber": "d.packet_number",
	"createdAt":    "d.created_at",
}

type deckRow struct {
	models.Deck
	EvaluatorFirstName string `db:"evaluator_first_name"`
	EvaluatorLastName  string `db:"evaluator_last_name"`
	EvaluatorEmail     string `db:"evaluator_email"`
}

func (r deckRow) toDeck() models.Deck {
	deck := r.Deck
	if r.EvaluatorEmail != "" {
		deck.Evaluator = &models.EvaluatorRef{
			ID:        deck.EvaluatorID,
			FirstName: r.EvaluatorFirstName,
			LastName:  r.EvaluatorLastName,
			Email:     r.EvaluatorEmail,
		}
	}
	return deck
}

func toDecks(rows []deckRow) []models.Deck {
	decks := make([]models.Deck, len(rows))
	for i, row := range rows {
		decks[i] = row.toDeck()
	}
	return decks
}

// DeckRepository persists decks in postgres.
type DeckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository constructs the repository.
func NewDeckRepository(db *sqlx.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// Create inserts a new deck. Lifecycle fields default to PENDING with zero sheets.
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}
	if deck.StatusOfDeck == "" {
		deck.StatusOfDeck = models.DeckStatusPending
	}
	now := time.Now().UTC()
	deck.CreatedAt = now
	deck.UpdatedAt = now

	const query = `INSERT INTO decks
	(id, exam_date, program_name, course_code, course_name, school, semester, room_number, packet_number, rack_number,
	 student_count, cohort, shift_of_exam, evaluator_id, number_of_answer_sheets, status_of_deck, qr_code_string,
	 pick_up_timestamp, drop_timestamp, created_at, updated_at)
	VALUES (:id, :exam_date, :program_name, :course_code, :course_name, :school, :semester, :room_number, :packet_number, :rack_number,
	 :student_count, :cohort, :shift_of_exam, :evaluator_id, :number_of_answer_sheets, :status_of_deck, :qr_code_string,
	 :pick_up_timestamp, :drop_timestamp, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, deck); err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	return nil
}

// FindByQRCode returns the deck with the given scannable identifier.
func (r *DeckRepository) FindByQRCode(ctx context.Context, qr string) (*models.Deck, error) {
	return r.findOne(ctx, "d.qr_code_string = $1", qr)
}

// FindByID returns the deck with the given primary key.
func (r *DeckRepository) FindByID(ctx context.Context, id string) (*models.Deck, error) {
	return r.findOne(ctx, "d.id = $1", id)
}

func (r *DeckRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Deck, error) {
	query := "SELECT " + deckColumns + deckFrom + " WHERE " + where + " LIMIT 1"
	var row deckRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find deck: %w", err)
	}
	deck := row.toDeck()
	return &deck, nil
}

// TransitionParams describes a conditional status change.
type TransitionParams struct {
	ID   string
	From models.DeckStatus
	To   models.DeckStatus
	At   int64
}

// Transition moves a deck from params.From to params.To and stamps the
// matching timestamp column. The update only applies while the stored status
// still equals From (and, for drops, sheets are recorded); otherwise it
// returns sql.ErrNoRows and nothing changes.
func (r *DeckRepository) Transition(ctx context.Context, params TransitionParams) error {
	var stampColumn string
	guard := "status_of_deck = :from"
	switch params.To {
	case models.DeckStatusPickedUp:
		stampColumn = "pick_up_timestamp"
	case models.DeckStatusDropped:
		stampColumn = "drop_timestamp"
		guard += " AND number_of_answer_sheets > 0"
	default:
		return fmt.Errorf("transition deck: unsupported target status %q", params.To)
	}

	query := fmt.Sprintf("UPDATE decks SET status_of_deck = :to, %s = :at, updated_at = :updated_at WHERE id = :id AND %s",
		stampColumn, guard)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         params.ID,
		"from":       params.From,
		"to":         params.To,
		"at":         params.At,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("transition deck: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deck transition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetAnswerSheetCount overwrites the recorded sheet count of the deck with the
// given identifier regardless of its status.
func (r *DeckRepository) SetAnswerSheetCount(ctx context.Context, qr string, count int) error {
	const query = `UPDATE decks SET number_of_answer_sheets = $2, updated_at = $3 WHERE qr_code_string = $1`
	result, err := r.db.ExecContext(ctx, query, qr, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set answer sheet count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check answer sheet rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns a page of decks matching filter plus the total match count.
func (r *DeckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("d.status_of_deck = $%d", len(args)))
	}
	if filter.EvaluatorID != "" {
		args = append(args, filter.EvaluatorID)
		conditions = append(conditions, fmt.Sprintf("d.evaluator_id = $%d", len(args)))
	}
	if filter.ExamFrom != nil {
		args = append(args, *filter.ExamFrom)
		conditions = append(conditions, fmt.Sprintf("d.exam_date >= $%d", len(args)))
	}
	if filter.ExamTo != nil {
		args = append(args, *filter.ExamTo)
		conditions = append(conditions, fmt.Sprintf("d.exam_date <= $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(d.program_name ILIKE $%[1]d OR d.course_code ILIKE $%[1]d OR d.course_name ILIKE $%[1]d OR d.school ILIKE $%[1]d OR d.semester ILIKE $%[1]d OR d.status_of_deck ILIKE $%[1]d OR d.qr_code_string ILIKE $%[1]d)", n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy, ok := deckSortColumns[filter.SortBy]
	if !ok {
		sortBy = "d.course_name"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize, 10)
	listQuery := fmt.Sprintf("SELECT %s%s%s ORDER BY %s %s, d.id ASC LIMIT %d OFFSET %d",
		deckColumns, deckFrom, where, sortBy, sortOrder, pageSize, (page-1)*pageSize)

	var rows []deckRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list decks: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+deckFrom+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count decks: %w", err)
	}
	return toDecks(rows), total, nil
}

// ListOverdue returns picked-up decks with sheets recorded whose pickup
// happened before the given epoch second.
func (r *DeckRepository) ListOverdue(ctx context.Context, pickedUpBefore int64) ([]models.Deck, error) {
	query := "SELECT " + deckColumns + deckFrom +
		" WHERE d.status_of_deck = $1 AND d.number_of_answer_sheets > 0 AND d.pick_up_timestamp < $2 ORDER BY d.pick_up_timestamp ASC"
	var rows []deckRow
	if err := r.db.SelectContext(ctx, &rows, query, models.DeckStatusPickedUp, pickedUpBefore); err != nil {
		return nil, fmt.Errorf("list overdue decks: %w", err)
	}
	return toDecks(rows), nil
}

// ListWithSheets returns every deck that has answer sheets recorded.
func (r *DeckRepository) ListWithSheets(ctx context.Context) ([]models.Deck, error) {
	query := "SELECT " + deckColumns + deckFrom + " WHERE d.number_of_answer_sheets > 0 ORDER BY d.exam_date ASC"
	var rows []deckRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list decks with sheets: %w", err)
	}
	return toDecks(rows), nil
}

// Update applies an administrative patch to descriptive fields.
func (r *DeckRepository) Update(ctx context.Context, id string, patch models.DeckPatch) error {
	params := map[string]interface{}{"id": id, "updated_at": time.Now().UTC()}
	setParts := []string{"updated_at = :updated_at"}
	add := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = :%s", column, column))
		params[column] = value
	}
	if patch.ProgramName != nil {
		add("program_name", *patch.ProgramName)
	}
	if patch.CourseCode != nil {
		add("course_code", *patch.CourseCode)
	}
	if patch.CourseName != nil {
		add("course_name", *patch.CourseName)
	}
	if patch.School != nil {
		add("school", *patch.School)
	}
	if patch.Semester != nil {
		add("semester", *patch.Semester)
	}
	if patch.RoomNumber != nil {
		add("room_number", *patch.RoomNumber)
	}
	if patch.PacketNumber != nil {
		add("packet_number", *patch.PacketNumber)
	}
	if patch.RackNumber != nil {
		add("rack_number", *patch.RackNumber)
	}
	if patch.StudentCount != nil {
		add("student_count", *patch.StudentCount)
	}
	if patch.EvaluatorID != nil {
		add("evaluator_id", *patch.EvaluatorID)
	}

	query := fmt.Sprintf("UPDATE decks SET %s WHERE id = :id", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deck update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByID removes one deck permanently.
func (r *DeckRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deck delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll purges every deck and returns how many were removed.
func (r *DeckRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks`)
	if err != nil {
		return 0, fmt.Errorf("delete all decks: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deck purge rows: %w", err)
	}
	return rows, nil
}

func normalizePage(page, pageSize, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = fallback
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
