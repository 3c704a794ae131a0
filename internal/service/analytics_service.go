package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

const (
	analyticsDateLayout     = "2006-01-02"
	defaultTrendDays        = 30
	defaultEvaluatorLimit   = 10
	recentActivityLimit     = 10
	maxAnalyticsWindowLimit = 365
)

// AnalyticsRepository describes the aggregate queries required by AnalyticsService.
type AnalyticsRepository interface {
	CountByStatus(ctx context.Context, filter models.AnalyticsFilter) ([]models.StatusCount, error)
	CountDistinctSchools(ctx context.Context, filter models.AnalyticsFilter) (int, error)
	RecentActivity(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]models.RecentActivityRow, error)
	DailyTrends(ctx context.Context, since int64) ([]models.DailyTrendRow, error)
	EvaluatorStats(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]models.EvaluatorStat, error)
}

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

// AnalyticsRequest carries the optional date window shared by the analytics endpoints.
type AnalyticsRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Status    string `form:"status"`
	Days      int    `form:"days"`
	Limit     int    `form:"limit"`
}

// AnalyticsService provides read-optimised deck analytics with cache integration.
type AnalyticsService struct {
	repo   AnalyticsRepository
	users  userCounter
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, users userCounter, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, users: users, cache: cache, logger: logger, now: time.Now}
}

// DeckCounts tallies decks per status. The boolean indicates a cache hit.
func (s *AnalyticsService) DeckCounts(ctx context.Context, req AnalyticsRequest) (*models.DeckCounts, bool, error) {
	filter, err := analyticsFilter(req, true)
	if err != nil {
		return nil, false, err
	}

	key := analyticsKey("deck-counts", req.StartDate, req.EndDate, strings.ToUpper(req.Status))
	var cached models.DeckCounts
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	counts, err := s.countByStatus(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, counts, 0)
	return counts, false, nil
}

// DashboardStats composes the overview, status distribution and recent activity.
func (s *AnalyticsService) DashboardStats(ctx context.Context, req AnalyticsRequest) (*models.DashboardStats, bool, error) {
	filter, err := analyticsFilter(req, false)
	if err != nil {
		return nil, false, err
	}

	key := analyticsKey("dashboard-stats", req.StartDate, req.EndDate)
	var cached models.DashboardStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	counts, err := s.countByStatus(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	schools, err := s.repo.CountDistinctSchools(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Dependency(err, "failed to count schools")
	}
	users := 0
	if s.users != nil {
		if users, err = s.users.Count(ctx); err != nil {
			return nil, false, appErrors.Dependency(err, "failed to count users")
		}
	}
	rows, err := s.repo.RecentActivity(ctx, filter, recentActivityLimit)
	if err != nil {
		return nil, false, appErrors.Dependency(err, "failed to load recent activity")
	}

	stats := &models.DashboardStats{
		Overview: models.DashboardOverview{
			TotalDecks:     counts.Total,
			TotalUsers:     users,
			TotalSchools:   schools,
			CompletionRate: percentage(counts.Dropped, counts.Total),
			Pending:        counts.Pending,
			PickedUp:       counts.PickedUp,
			Dropped:        counts.Dropped,
		},
		StatusDistribution: []models.NameValue{
			{Name: string(models.DeckStatusPending), Value: counts.Pending},
			{Name: string(models.DeckStatusPickedUp), Value: counts.PickedUp},
			{Name: string(models.DeckStatusDropped), Value: counts.Dropped},
		},
		RecentActivity: make([]models.DeckActivity, 0, len(rows)),
	}
	for _, row := range rows {
		stats.RecentActivity = append(stats.RecentActivity, activityFromRow(row))
	}

	s.cache.Set(ctx, key, stats, 0)
	return stats, false, nil
}

// DailyTrends aggregates decks by exam day over the trailing window.
func (s *AnalyticsService) DailyTrends(ctx context.Context, req AnalyticsRequest) ([]models.DailyTrend, bool, error) {
	days := req.Days
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxAnalyticsWindowLimit {
		days = maxAnalyticsWindowLimit
	}

	key := analyticsKey("daily-trends", fmt.Sprint(days))
	var cached []models.DailyTrend
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	since := startOfDay(s.now().UTC()).AddDate(0, 0, -days).Unix()
	rows, err := s.repo.DailyTrends(ctx, since)
	if err != nil {
		return nil, false, appErrors.Dependency(err, "failed to load daily trends")
	}

	trends := make([]models.DailyTrend, 0)
	index := map[string]int{}
	for _, row := range rows {
		pos, ok := index[row.Day]
		if !ok {
			pos = len(trends)
			index[row.Day] = pos
			trends = append(trends, models.DailyTrend{Date: row.Day, StatusCounts: map[models.DeckStatus]int{}})
		}
		trend := &trends[pos]
		trend.StatusCounts[row.Status] += row.Decks
		trend.TotalDecks += row.Decks
		trend.TotalStudents += row.TotalStudents
	}

	s.cache.Set(ctx, key, trends, 0)
	return trends, false, nil
}

// EvaluatorStats ranks evaluators by assigned decks.
func (s *AnalyticsService) EvaluatorStats(ctx context.Context, req AnalyticsRequest) ([]models.EvaluatorStat, bool, error) {
	filter, err := analyticsFilter(req, false)
	if err != nil {
		return nil, false, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultEvaluatorLimit
	}

	key := analyticsKey("evaluator-stats", req.StartDate, req.EndDate, fmt.Sprint(limit))
	var cached []models.EvaluatorStat
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	stats, err := s.repo.EvaluatorStats(ctx, filter, limit)
	if err != nil {
		return nil, false, appErrors.Dependency(err, "failed to load evaluator stats")
	}
	for i := range stats {
		stats[i].Name = strings.TrimSpace(stats[i].FirstName + " " + stats[i].LastName)
		if stats[i].Total > 0 {
			stats[i].Efficiency = math.Round(float64(stats[i].Completed)/float64(stats[i].Total)*10000) / 100
		}
	}
	if stats == nil {
		stats = []models.EvaluatorStat{}
	}

	s.cache.Set(ctx, key, stats, 0)
	return stats, false, nil
}

func (s *AnalyticsService) countByStatus(ctx context.Context, filter models.AnalyticsFilter) (*models.DeckCounts, error) {
	rows, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, appErrors.Dependency(err, "failed to count decks")
	}
	counts := &models.DeckCounts{}
	for _, row := range rows {
		switch row.Status {
		case models.DeckStatusPending:
			counts.Pending += row.Count
		case models.DeckStatusPickedUp:
			counts.PickedUp += row.Count
		case models.DeckStatusDropped:
			counts.Dropped += row.Count
		}
		counts.Total += row.Count
	}
	return counts, nil
}

// analyticsFilter bounds the window to whole days: the start date from
// 00:00:00 and the end date through 23:59:59 UTC.
func analyticsFilter(req AnalyticsRequest, withStatus bool) (models.AnalyticsFilter, error) {
	var filter models.AnalyticsFilter
	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		day, err := time.Parse(analyticsDateLayout, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		from := day.Unix()
		filter.From = &from
	}
	if raw := strings.TrimSpace(req.EndDate); raw != "" {
		day, err := time.Parse(analyticsDateLayout, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		to := day.Add(24*time.Hour - time.Second).Unix()
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && *filter.From > *filter.To {
		return filter, appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
	}
	if withStatus && strings.TrimSpace(req.Status) != "" {
		status := models.DeckStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown deck status")
		}
		filter.Status = &status
	}
	return filter, nil
}

func activityFromRow(row models.RecentActivityRow) models.DeckActivity {
	activity := models.DeckActivity{
		ID:        row.ID,
		Action:    string(models.DeckStatusPickedUp),
		Evaluator: strings.TrimSpace(row.FirstName + " " + row.LastName),
		Course:    strings.TrimSpace(row.CourseCode + " " + row.CourseName),
		School:    row.School,
	}
	switch {
	case row.DropTimestamp != nil:
		activity.Action = string(models.DeckStatusDropped)
		activity.Timestamp = time.Unix(*row.DropTimestamp, 0).UTC()
	case row.PickUpTimestamp != nil:
		activity.Timestamp = time.Unix(*row.PickUpTimestamp, 0).UTC()
	}
	return activity
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func analyticsKey(parts ...string) string {
	return "analytics:" + strings.Join(parts, ":")
}
