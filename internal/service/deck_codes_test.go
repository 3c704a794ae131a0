package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

func TestParseExamDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix()
	for _, raw := range []string{"2024-03-15", "03-15-2024", "3-15-2024", "03/15/2024", "3/15/2024", "2024-03-15T00:00:00Z"} {
		got, err := parseExamDate(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	padded, err := parseExamDate("03/04/2024")
	require.NoError(t, err)
	unpadded, err := parseExamDate("3/4/2024")
	require.NoError(t, err)
	require.Equal(t, unpadded, padded)
	require.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Unix(), padded)

	_, err = parseExamDate("15/03/2024")
	require.Error(t, err)
	_, err = parseExamDate("next tuesday")
	require.Error(t, err)
	_, err = parseExamDate(" ")
	require.Error(t, err)
}

func TestShiftFromCode(t *testing.T) {
	require.Equal(t, models.ShiftMorning, shiftFromCode("M"))
	require.Equal(t, models.ShiftMorning, shiftFromCode(" M "))
	require.Equal(t, models.ShiftEvening, shiftFromCode("m"))
	require.Equal(t, models.ShiftEvening, shiftFromCode("MORNING"))
	require.Equal(t, models.ShiftEvening, shiftFromCode("A"))
	require.Equal(t, models.ShiftEvening, shiftFromCode(""))
	require.Equal(t, "M", shiftCode(models.ShiftMorning))
}

func TestShiftFromForm(t *testing.T) {
	require.Equal(t, models.ShiftMorning, shiftFromForm("m"))
	require.Equal(t, models.ShiftMorning, shiftFromForm("Morning"))
	require.Equal(t, models.ShiftEvening, shiftFromForm("E"))
	require.Equal(t, models.ShiftEvening, shiftFromForm(""))
}

func TestBuildQRCode(t *testing.T) {
	parts := qrParts{School: "SOE", Date: "2024-03-15", Shift: "M", CourseCode: "CS101", Room: "101", Program: "BTech", StudentCount: "60", Packet: "2"}
	require.Equal(t, "SOE_2024-03-15_M_CS101_101_BTech_St.Count_60_Packet_2_tok", buildQRCode(parts, "tok"))
	require.NotEqual(t, buildQRCode(parts, ""), buildQRCode(parts, ""))
}
