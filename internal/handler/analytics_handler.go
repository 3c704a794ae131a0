package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/deck-tracker-api/internal/middleware"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	"github.com/noah-isme/deck-tracker-api/pkg/response"
)

type deckAnalytics interface {
	DeckCounts(ctx context.Context, req service.AnalyticsRequest) (*models.DeckCounts, bool, error)
	DashboardStats(ctx context.Context, req service.AnalyticsRequest) (*models.DashboardStats, bool, error)
	DailyTrends(ctx context.Context, req service.AnalyticsRequest) ([]models.DailyTrend, bool, error)
	EvaluatorStats(ctx context.Context, req service.AnalyticsRequest) ([]models.EvaluatorStat, bool, error)
}

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics deckAnalytics
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics deckAnalytics) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// DeckCounts godoc
// @Summary Deck counts per status
// @Tags Analytics
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param status query string false "Deck status"
// @Success 200 {object} response.Envelope
// @Router /analytics/deck-counts [get]
func (h *AnalyticsHandler) DeckCounts(c *gin.Context) {
	counts, hit, err := h.analytics.DeckCounts(c.Request.Context(), analyticsRequest(c))
	respondAnalytics(c, counts, hit, err)
}

// DashboardStats godoc
// @Summary Dashboard overview
// @Tags Analytics
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /analytics/dashboard-stats [get]
func (h *AnalyticsHandler) DashboardStats(c *gin.Context) {
	stats, hit, err := h.analytics.DashboardStats(c.Request.Context(), analyticsRequest(c))
	respondAnalytics(c, stats, hit, err)
}

// DailyTrends godoc
// @Summary Decks per exam day
// @Tags Analytics
// @Produce json
// @Param days query int false "Trailing window in days (default 30)"
// @Success 200 {object} response.Envelope
// @Router /analytics/daily-trends [get]
func (h *AnalyticsHandler) DailyTrends(c *gin.Context) {
	trends, hit, err := h.analytics.DailyTrends(c.Request.Context(), analyticsRequest(c))
	respondAnalytics(c, trends, hit, err)
}

// EvaluatorStats godoc
// @Summary Evaluator workload ranking
// @Tags Analytics
// @Produce json
// @Param limit query int false "Evaluators to return (default 10)"
// @Success 200 {object} response.Envelope
// @Router /analytics/evaluator-stats [get]
func (h *AnalyticsHandler) EvaluatorStats(c *gin.Context) {
	stats, hit, err := h.analytics.EvaluatorStats(c.Request.Context(), analyticsRequest(c))
	respondAnalytics(c, stats, hit, err)
}

func analyticsRequest(c *gin.Context) service.AnalyticsRequest {
	return service.AnalyticsRequest{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Status:    c.Query("status"),
		Days:      parseQueryInt(c, "days", 0),
		Limit:     parseQueryInt(c, "limit", 0),
	}
}

func respondAnalytics(c *gin.Context, data interface{}, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
