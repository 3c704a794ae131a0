package models

// ImportRow is one uploaded sheet row. Every field is optional at parse time;
// the reconciler decides which absences are fatal.
type ImportRow struct {
	Line           int
	EvaluatorEmail string
	Date           string
	Time           string
	ProgramName    string
	CourseCode     string
	CourseName     string
	School         string
	PacketNumber   string
	Semester       string
	StudentCount   string
	RackNumber     string
	RoomNumber     string
	Cohort         string

	// Raw keeps the original cells so error reports echo the upload.
	Raw map[string]string
}

// ImportFailure records why a row was rejected.
type ImportFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarises one bulk import.
type ImportResult struct {
	Submitted      int             `json:"submitted"`
	Inserted       int             `json:"inserted"`
	Failed         int             `json:"failed"`
	ErrorReportRef string          `json:"errorReportRef,omitempty"`
	ErrorReportURL string          `json:"errorReportUrl,omitempty"`
	Failures       []ImportFailure `json:"failures,omitempty"`
}
