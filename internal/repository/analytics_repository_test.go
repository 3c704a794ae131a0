package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

func TestAnalyticsCountByStatusFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	from, to := int64(100), int64(200)
	mock.ExpectQuery(regexp.QuoteMeta("FROM decks d WHERE 1=1 AND d.exam_date >= $1 AND d.exam_date <= $2 GROUP BY d.status_of_deck")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"status_of_deck", "count"}).AddRow("PENDING", 3).AddRow("DROPPED", 2))

	counts, err := repo.CountByStatus(context.Background(), models.AnalyticsFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.DeckStatusDropped, counts[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRecentActivityLimitArg(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	status := models.DeckStatusDropped
	mock.ExpectQuery(regexp.QuoteMeta("DESC LIMIT $2")).
		WithArgs(status, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status_of_deck", "course_code", "course_name", "school", "first_name", "last_name", "pick_up_timestamp", "drop_timestamp"}).
			AddRow("deck-1", "DROPPED", "CS101", "Programming", "SOCS", "Asha", "Rao", int64(10), int64(20)))

	rows, err := repo.RecentActivity(context.Background(), models.AnalyticsFilter{Status: &status}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.EqualValues(t, 20, *rows[0].DropTimestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsEvaluatorStats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY total DESC LIMIT $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"evaluator_id", "first_name", "last_name", "email", "total", "completed", "pending", "picked_up"}).
			AddRow("user-1", "Asha", "Rao", "asha@example.edu", 4, 3, 0, 1))

	stats, err := repo.EvaluatorStats(context.Background(), models.AnalyticsFilter{}, 5)
	require.NoError(t, err)
	require.Equal(t, 3, stats[0].Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsDailyTrends(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.exam_date >= $1")).
		WithArgs(int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"day", "status_of_deck", "decks", "total_students"}).
			AddRow("2024-01-10", "PENDING", 2, 80))

	rows, err := repo.DailyTrends(context.Background(), 1000)
	require.NoError(t, err)
	require.Equal(t, 80, rows[0].TotalStudents)
	require.NoError(t, mock.ExpectationsWereMet())
}
