package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	counts     []models.StatusCount
	schools    int
	activity   []models.RecentActivityRow
	trends     []models.DailyTrendRow
	evaluators []models.EvaluatorStat
	countErr   error

	countCalls int
	lastFilter models.AnalyticsFilter
	lastSince  int64
	lastLimit  int
}

func (m *mockAnalyticsRepo) CountByStatus(_ context.Context, filter models.AnalyticsFilter) ([]models.StatusCount, error) {
	m.countCalls++
	m.lastFilter = filter
	if m.countErr != nil {
		return nil, m.countErr
	}
	return m.counts, nil
}

func (m *mockAnalyticsRepo) CountDistinctSchools(context.Context, models.AnalyticsFilter) (int, error) {
	return m.schools, nil
}

func (m *mockAnalyticsRepo) RecentActivity(_ context.Context, _ models.AnalyticsFilter, limit int) ([]models.RecentActivityRow, error) {
	m.lastLimit = limit
	return m.activity, nil
}

func (m *mockAnalyticsRepo) DailyTrends(_ context.Context, since int64) ([]models.DailyTrendRow, error) {
	m.lastSince = since
	return m.trends, nil
}

func (m *mockAnalyticsRepo) EvaluatorStats(_ context.Context, _ models.AnalyticsFilter, limit int) ([]models.EvaluatorStat, error) {
	m.lastLimit = limit
	return m.evaluators, nil
}

type userCountStub int

func (c userCountStub) Count(context.Context) (int, error) { return int(c), nil }

func newAnalyticsForTest(repo *mockAnalyticsRepo) (*AnalyticsService, *memoryCache) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, userCountStub(7), cache, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestAnalyticsDeckCountsUsesCache(t *testing.T) {
	repo := &mockAnalyticsRepo{counts: []models.StatusCount{
		{Status: models.DeckStatusPending, Count: 4},
		{Status: models.DeckStatusPickedUp, Count: 2},
		{Status: models.DeckStatusDropped, Count: 6},
	}}
	svc, store := newAnalyticsForTest(repo)
	ctx := context.Background()
	req := AnalyticsRequest{StartDate: "2024-03-01", EndDate: "2024-03-01"}

	counts, hit, err := svc.DeckCounts(ctx, req)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, models.DeckCounts{Pending: 4, PickedUp: 2, Dropped: 6, Total: 12}, *counts)
	require.EqualValues(t, 1709251200, *repo.lastFilter.From)
	require.EqualValues(t, 1709251200+86399, *repo.lastFilter.To)

	counts, hit, err = svc.DeckCounts(ctx, req)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 12, counts.Total)
	require.Equal(t, 1, repo.countCalls)

	svc.cache.Invalidate(ctx, analyticsCachePattern)
	require.Zero(t, store.len())
	_, hit, err = svc.DeckCounts(ctx, req)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, repo.countCalls)
}

func TestAnalyticsDeckCountsValidation(t *testing.T) {
	svc, _ := newAnalyticsForTest(&mockAnalyticsRepo{})
	ctx := context.Background()

	_, _, err := svc.DeckCounts(ctx, AnalyticsRequest{StartDate: "01/03/2024"})
	requireCode(t, err, appErrors.ErrValidation)

	_, _, err = svc.DeckCounts(ctx, AnalyticsRequest{StartDate: "2024-03-02", EndDate: "2024-03-01"})
	requireCode(t, err, appErrors.ErrValidation)

	_, _, err = svc.DeckCounts(ctx, AnalyticsRequest{Status: "LOST"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestAnalyticsDeckCountsDependencyFailure(t *testing.T) {
	svc, _ := newAnalyticsForTest(&mockAnalyticsRepo{countErr: errors.New("db down")})
	_, _, err := svc.DeckCounts(context.Background(), AnalyticsRequest{Status: "pending"})
	requireCode(t, err, appErrors.ErrDependency)
}

func TestAnalyticsDashboardStats(t *testing.T) {
	drop, pick := int64(1711000000), int64(1710000000)
	repo := &mockAnalyticsRepo{
		counts: []models.StatusCount{
			{Status: models.DeckStatusPending, Count: 1},
			{Status: models.DeckStatusDropped, Count: 2},
		},
		schools: 3,
		activity: []models.RecentActivityRow{
			{ID: "d1", CourseCode: "CS101", CourseName: "Programming", FirstName: "Asha", LastName: "Rao", PickUpTimestamp: &pick, DropTimestamp: &drop},
			{ID: "d2", CourseCode: "MA201", CourseName: "Calculus", PickUpTimestamp: &pick},
		},
	}
	svc, _ := newAnalyticsForTest(repo)

	stats, hit, err := svc.DashboardStats(context.Background(), AnalyticsRequest{})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 3, stats.Overview.TotalDecks)
	require.Equal(t, 7, stats.Overview.TotalUsers)
	require.Equal(t, 3, stats.Overview.TotalSchools)
	require.Equal(t, 67, stats.Overview.CompletionRate)
	require.Len(t, stats.StatusDistribution, 3)
	require.Equal(t, recentActivityLimit, repo.lastLimit)
	require.Equal(t, "DROPPED", stats.RecentActivity[0].Action)
	require.Equal(t, "Asha Rao", stats.RecentActivity[0].Evaluator)
	require.Equal(t, time.Unix(drop, 0).UTC(), stats.RecentActivity[0].Timestamp)
	require.Equal(t, "PICKED_UP", stats.RecentActivity[1].Action)
}

func TestAnalyticsDailyTrendsGroupsByDay(t *testing.T) {
	repo := &mockAnalyticsRepo{trends: []models.DailyTrendRow{
		{Day: "2024-03-10", Status: models.DeckStatusPending, Decks: 2, TotalStudents: 60},
		{Day: "2024-03-10", Status: models.DeckStatusDropped, Decks: 1, TotalStudents: 30},
		{Day: "2024-03-11", Status: models.DeckStatusPickedUp, Decks: 4, TotalStudents: 120},
	}}
	svc, _ := newAnalyticsForTest(repo)

	trends, _, err := svc.DailyTrends(context.Background(), AnalyticsRequest{})
	require.NoError(t, err)
	require.Len(t, trends, 2)
	require.Equal(t, 3, trends[0].TotalDecks)
	require.Equal(t, 90, trends[0].TotalStudents)
	require.Equal(t, 1, trends[0].StatusCounts[models.DeckStatusDropped])
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix(), repo.lastSince)
}

func TestAnalyticsEvaluatorStatsEfficiency(t *testing.T) {
	repo := &mockAnalyticsRepo{evaluators: []models.EvaluatorStat{
		{EvaluatorID: "u1", FirstName: "Asha", LastName: "Rao", Total: 3, Completed: 2},
		{EvaluatorID: "u2", FirstName: "Ben", Total: 0},
	}}
	svc, _ := newAnalyticsForTest(repo)

	stats, _, err := svc.EvaluatorStats(context.Background(), AnalyticsRequest{})
	require.NoError(t, err)
	require.Equal(t, defaultEvaluatorLimit, repo.lastLimit)
	require.Equal(t, "Asha Rao", stats[0].Name)
	require.InDelta(t, 66.67, stats[0].Efficiency, 0.001)
	require.Zero(t, stats[1].Efficiency)
}
