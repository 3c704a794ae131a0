package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffEvaluator Email, Date ,Time\n" +
		"a@x.com,2024-01-10,M\n" +
		",,\n" +
		"b@x.com,2024-01-11\n"

	data, err := NewCSVExporter().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"Evaluator Email", "Date", "Time"}, data.Headers)
	require.Len(t, data.Rows, 2)
	require.Equal(t, "M", data.Rows[0]["Time"])
	require.Equal(t, "", data.Rows[1]["Time"])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := NewCSVExporter().Read(strings.NewReader(""))
	require.ErrorContains(t, err, "csv is empty")
}

func TestRenderRoundTripKeepsColumnOrder(t *testing.T) {
	exp := NewCSVExporter()
	out, err := exp.Render(Dataset{
		Headers: []string{"Packet No.", "error"},
		Rows:    []map[string]string{{"Packet No.": "P-1", "error": "Evaluator Doesn't Exist"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Packet No.,error\nP-1,Evaluator Doesn't Exist\n", string(out))

	_, err = exp.Render(Dataset{})
	require.Error(t, err)
}

func TestReadCSVRecordsSourceLines(t *testing.T) {
	input := "Date,Time\n" +
		"2024-01-10,M\n" +
		"\n" +
		",\n" +
		"2024-01-11,E\n"

	data, err := NewCSVExporter().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)
	require.Equal(t, []int{2, 5}, data.Lines)
}
