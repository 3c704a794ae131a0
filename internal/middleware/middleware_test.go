package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.token = token
	return v.claims, v.err
}

type auditRepoStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditRepoStub) Create(_ context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	validator := &validatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	r := gin.New()
	r.GET("/me", JWT(validator), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentClaims(c).UserID)
	})

	w := perform(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", "Token abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", "Bearer abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "u1", w.Body.String())
	require.Equal(t, "abc", validator.token)

	validator.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	w = perform(r, http.MethodGet, "/me", "Bearer expired")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleFaculty}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextUserKey, claims) })
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.POST("/decks/status", RequireRoles(models.RoleAdmin, models.RoleModerator), ok)
	r.GET("/decks/assigned", RequireRoles(models.RoleAdmin, models.RoleModerator, models.RoleFaculty), ok)
	r.GET("/users/:id", RBAC(string(models.RoleAdmin), RoleSelf), ok)

	require.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/decks/status", "").Code)
	require.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/decks/assigned", "").Code)
	require.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/users/u1", "").Code)
	require.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/users/u2", "").Code)

	anonymous := gin.New()
	anonymous.GET("/x", RequireRoles(models.RoleAdmin), ok)
	require.Equal(t, http.StatusUnauthorized, perform(anonymous, http.MethodGet, "/x", "").Code)
}

func TestAuditRecordsSuccessfulRequestsOnly(t *testing.T) {
	repo := &auditRepoStub{}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin"}) })
	r.DELETE("/decks/:id", Audit(repo, nil, models.AuditActionDeckPurge, "decks"), func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	perform(r, http.MethodDelete, "/decks/d1", "")
	perform(r, http.MethodDelete, "/decks/missing", "")

	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	require.Equal(t, models.AuditActionDeckPurge, log.Action)
	require.Equal(t, "decks", log.Resource)
	require.Equal(t, "d1", *log.ResourceID)
	require.Equal(t, "admin", *log.UserID)

	repo.err = errors.New("db down")
	w := perform(r, http.MethodDelete, "/decks/d2", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestResponseMetaCacheHit(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/a", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/a", "")
	require.Equal(t, "HIT", w.Header().Get("X-Cache"))
	require.Equal(t, true, meta[cacheHitKey])
	require.Contains(t, meta, "processing_time_ms")
}
