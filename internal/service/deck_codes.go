package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

// examDateLayouts are tried in order. Slash and dash dates are month-first
// whether or not they are zero-padded.
var examDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	time.RFC3339,
}

// parseExamDate converts a sheet or form date into epoch seconds (UTC).
func parseExamDate(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("date is empty")
	}
	for _, layout := range examDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognised date %q", raw)
}

// shiftFromCode maps the sheet Time code; anything but M is evening.
func shiftFromCode(code string) models.ExamShift {
	if strings.TrimSpace(code) == "M" {
		return models.ShiftMorning
	}
	return models.ShiftEvening
}

// shiftFromForm maps the validated shiftOfExam of a manual deck, which may be
// the letter or the full shift name in any case.
func shiftFromForm(value string) models.ExamShift {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "M", string(models.ShiftMorning):
		return models.ShiftMorning
	default:
		return models.ShiftEvening
	}
}

func shiftCode(shift models.ExamShift) string {
	if shift == models.ShiftMorning {
		return "M"
	}
	return "E"
}

type qrParts struct {
	School       string
	Date         string
	Shift        string
	CourseCode   string
	Room         string
	Program      string
	StudentCount string
	Packet       string
}

// buildQRCode synthesises a deck's scannable identifier. The trailing random
// token keeps identical sheet rows distinct.
func buildQRCode(p qrParts, token string) string {
	if token == "" {
		token = uuid.NewString()
	}
	return strings.Join([]string{
		p.School, p.Date, p.Shift, p.CourseCode, p.Room, p.Program,
		"St.Count", p.StudentCount, "Packet", p.Packet, token,
	}, "_")
}
