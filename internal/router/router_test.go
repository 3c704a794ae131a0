package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/handler"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (t tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type auditStub struct{ actions []string }

func (a *auditStub) Create(_ context.Context, log *models.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

type analyticsStub struct{}

func (analyticsStub) DeckCounts(context.Context, service.AnalyticsRequest) (*models.DeckCounts, bool, error) {
	return &models.DeckCounts{}, false, nil
}

func (analyticsStub) DashboardStats(context.Context, service.AnalyticsRequest) (*models.DashboardStats, bool, error) {
	return &models.DashboardStats{}, false, nil
}

func (analyticsStub) DailyTrends(context.Context, service.AnalyticsRequest) ([]models.DailyTrend, bool, error) {
	return nil, false, nil
}

func (analyticsStub) EvaluatorStats(context.Context, service.AnalyticsRequest) ([]models.EvaluatorStat, bool, error) {
	return nil, false, nil
}

type schoolStub struct{}

func (schoolStub) Create(_ context.Context, name string) (*models.School, error) {
	return &models.School{ID: "s1", SchoolName: name}, nil
}

func (schoolStub) List(context.Context) ([]models.School, error) { return []models.School{}, nil }

func (schoolStub) Get(context.Context, string) (*models.School, error) { return &models.School{}, nil }

func newTestRouter(audit *auditStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Deps{
		Tokens: tokenStub{
			"admin":   {UserID: "a1", Role: models.RoleAdmin},
			"faculty": {UserID: "f1", Role: models.RoleFaculty},
		},
		Audit:     audit,
		Metrics:   service.NewMetricsService(),
		Auth:      handler.NewAuthHandler(nil),
		Decks:     handler.NewDeckHandler(nil, nil, nil, nil),
		Uploads:   handler.NewUploadHandler(nil, nil, 0),
		Analytics: handler.NewAnalyticsHandler(analyticsStub{}),
		Settings:  handler.NewSettingsHandler(nil, nil, schoolStub{}),
		Users:     handler.NewUserHandler(nil),
		Health:    handler.NewMetricsHandler(service.NewMetricsService(), nil),
	})
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := newTestRouter(&auditStub{})

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "").Code)
	require.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/docs/index.html", "").Code)
}

func TestRouterGuards(t *testing.T) {
	r := newTestRouter(&auditStub{})

	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/decks/status?action=pickup", "").Code)
	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/analytics/deck-counts", "forged").Code)
	require.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/decks/status?action=pickup", "faculty").Code)
	require.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/api/v1/decks", "faculty").Code)
	require.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/analytics/deck-counts", "faculty").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/analytics/deck-counts", "admin").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/schools", "faculty").Code)
}

func TestRouterAuditsMutations(t *testing.T) {
	audit := &auditStub{}
	r := newTestRouter(audit)

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/schools", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer admin")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusBadRequest, post(`{}`))
	require.Empty(t, audit.actions)

	require.Equal(t, http.StatusCreated, post(`{"schoolName":"SOE"}`))
	require.Equal(t, []string{models.AuditActionSchoolCreate}, audit.actions)
}
