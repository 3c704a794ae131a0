package models

import "time"

// DeckStatus is the lifecycle state of a deck. Decks only move forward:
// PENDING -> PICKED_UP -> DROPPED.
type DeckStatus string

const (
	DeckStatusPending  DeckStatus = "PENDING"
	DeckStatusPickedUp DeckStatus = "PICKED_UP"
	DeckStatusDropped  DeckStatus = "DROPPED"
)

// DeckStatuses lists every status in lifecycle order.
var DeckStatuses = []DeckStatus{DeckStatusPending, DeckStatusPickedUp, DeckStatusDropped}

// Valid reports whether s is a known status.
func (s DeckStatus) Valid() bool {
	switch s {
	case DeckStatusPending, DeckStatusPickedUp, DeckStatusDropped:
		return true
	}
	return false
}

// DeckAction is a requested lifecycle transition.
type DeckAction string

const (
	DeckActionPickup DeckAction = "pickup"
	DeckActionDrop   DeckAction = "drop"
)

// ExamShift is the sitting an exam was held in.
type ExamShift string

const (
	ShiftMorning ExamShift = "MORNING"
	ShiftEvening ExamShift = "EVENING"
)

// Deck is one physical bundle of answer sheets for a course sitting.
type Deck struct {
	ID                   string     `db:"id" json:"id"`
	ExamDate             int64      `db:"exam_date" json:"examDate"`
	ProgramName          string     `db:"program_name" json:"programName"`
	CourseCode           string     `db:"course_code" json:"courseCode"`
	CourseName           string     `db:"course_name" json:"courseName"`
	School               string     `db:"school" json:"school"`
	Semester             string     `db:"semester" json:"semester"`
	RoomNumber           string     `db:"room_number" json:"roomNumber"`
	PacketNumber         string     `db:"packet_number" json:"packetNumber"`
	RackNumber           string     `db:"rack_number" json:"rackNumber"`
	StudentCount         int        `db:"student_count" json:"studentCount"`
	Cohort               string     `db:"cohort" json:"cohort,omitempty"`
	ShiftOfExam          ExamShift  `db:"shift_of_exam" json:"shiftOfExam"`
	EvaluatorID          string     `db:"evaluator_id" json:"evaluatorId"`
	NumberOfAnswerSheets int        `db:"number_of_answer_sheets" json:"numberOfAnswerSheets"`
	StatusOfDeck         DeckStatus `db:"status_of_deck" json:"statusOfDeck"`
	QRCodeString         string     `db:"qr_code_string" json:"qrCodeString"`
	PickUpTimestamp      *int64     `db:"pick_up_timestamp" json:"pickUpTimestamp,omitempty"`
	DropTimestamp        *int64     `db:"drop_timestamp" json:"dropTimestamp,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`

	Evaluator *EvaluatorRef `db:"-" json:"evaluator,omitempty"`
}

// EvaluatorRef is the display projection of a deck's evaluator.
type EvaluatorRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"emailAddress"`
}

// Name returns the evaluator's display name.
func (e *EvaluatorRef) Name() string {
	if e == nil {
		return ""
	}
	return joinName(e.FirstName, e.LastName)
}

// DeckFilter scopes deck listings.
type DeckFilter struct {
	Search      string
	Status      *DeckStatus
	EvaluatorID string
	ExamFrom    *int64
	ExamTo      *int64
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// DeckPatch carries administrative edits to descriptive fields. Lifecycle
// fields are intentionally absent.
type DeckPatch struct {
	ProgramName  *string
	CourseCode   *string
	CourseName   *string
	School       *string
	Semester     *string
	RoomNumber   *string
	PacketNumber *string
	RackNumber   *string
	StudentCount *int
	EvaluatorID  *string
}

// Empty reports whether the patch changes nothing.
func (p DeckPatch) Empty() bool {
	return p.ProgramName == nil && p.CourseCode == nil && p.CourseName == nil && p.School == nil &&
		p.Semester == nil && p.RoomNumber == nil && p.PacketNumber == nil && p.RackNumber == nil &&
		p.StudentCount == nil && p.EvaluatorID == nil
}

// Bulk transition failure reasons.
const (
	ReasonNotFound     = "NOT_FOUND"
	ReasonNotPickedUp  = "NOT_PICKED_UP"
	ReasonZeroSheets   = "ZERO_SHEETS"
	ReasonDropped      = "ALREADY_DROPPED"
	ReasonStateChanged = "STATE_CHANGED"
	ReasonDependency   = "DEPENDENCY_FAILURE"
	ReasonValidation   = "VALIDATION_ERROR"
)

// BulkTransitionError names one deck that could not be transitioned.
type BulkTransitionError struct {
	ID      string `json:"id"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// BulkTransitionResult summarises a non-atomic bulk transition.
type BulkTransitionResult struct {
	Updated int                   `json:"updated"`
	Failed  int                   `json:"failed"`
	Errors  []BulkTransitionError `json:"errors"`
}
