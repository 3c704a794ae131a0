package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/deck-tracker-api/internal/models"
)

// AnalyticsRepository runs the aggregate queries behind the dashboard.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func analyticsWhere(filter models.AnalyticsFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("d.exam_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("d.exam_date <= $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("d.status_of_deck = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// CountByStatus groups matching decks by status.
func (r *AnalyticsRepository) CountByStatus(ctx context.Context, filter models.AnalyticsFilter) ([]models.StatusCount, error) {
	where, args := analyticsWhere(filter)
	query := "SELECT d.status_of_deck, COUNT(*) AS count FROM decks d" + where + " GROUP BY d.status_of_deck"
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count decks by status: %w", err)
	}
	return counts, nil
}

// CountDistinctSchools counts schools that appear on matching decks.
func (r *AnalyticsRepository) CountDistinctSchools(ctx context.Context, filter models.AnalyticsFilter) (int, error) {
	where, args := analyticsWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(DISTINCT d.school) FROM decks d"+where, args...); err != nil {
		return 0, fmt.Errorf("count distinct schools: %w", err)
	}
	return total, nil
}

// RecentActivity returns the decks most recently picked up or dropped.
func (r *AnalyticsRepository) RecentActivity(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]models.RecentActivityRow, error) {
	where, args := analyticsWhere(filter)
	args = append(args, limit)
	query := `SELECT d.id, d.status_of_deck, d.course_code, d.course_name, d.school,
       COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name,
       d.pick_up_timestamp, d.drop_timestamp
FROM decks d LEFT JOIN users u ON u.id = d.evaluator_id` + where +
		fmt.Sprintf(` AND (d.pick_up_timestamp IS NOT NULL OR d.drop_timestamp IS NOT NULL)
ORDER BY GREATEST(COALESCE(d.drop_timestamp, 0), COALESCE(d.pick_up_timestamp, 0)) DESC LIMIT $%d`, len(args))
	var rows []models.RecentActivityRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}
	return rows, nil
}

// DailyTrends groups decks by exam day (UTC) and status.
func (r *AnalyticsRepository) DailyTrends(ctx context.Context, since int64) ([]models.DailyTrendRow, error) {
	const query = `SELECT to_char(to_timestamp(d.exam_date) AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
       d.status_of_deck, COUNT(*) AS decks, COALESCE(SUM(d.student_count), 0) AS total_students
FROM decks d WHERE d.exam_date >= $1
GROUP BY day, d.status_of_deck ORDER BY day ASC`
	var rows []models.DailyTrendRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("query daily trends: %w", err)
	}
	return rows, nil
}

// EvaluatorStats tallies decks per evaluator, busiest first.
func (r *AnalyticsRepository) EvaluatorStats(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]models.EvaluatorStat, error) {
	where, args := analyticsWhere(filter)
	args = append(args, limit)
	query := `SELECT d.evaluator_id, COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name,
       COALESCE(u.email, '') AS email, COUNT(*) AS total,
       COUNT(*) FILTER (WHERE d.status_of_deck = 'DROPPED') AS completed,
       COUNT(*) FILTER (WHERE d.status_of_deck = 'PENDING') AS pending,
       COUNT(*) FILTER (WHERE d.status_of_deck = 'PICKED_UP') AS picked_up
FROM decks d LEFT JOIN users u ON u.id = d.evaluator_id` + where +
		fmt.Sprintf(` GROUP BY d.evaluator_id, u.first_name, u.last_name, u.email ORDER BY total DESC LIMIT $%d`, len(args))
	var stats []models.EvaluatorStat
	if err := r.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("query evaluator stats: %w", err)
	}
	return stats, nil
}
