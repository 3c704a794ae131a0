package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/handler"
	"github.com/noah-isme/deck-tracker-api/internal/middleware"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	"github.com/noah-isme/deck-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/deck-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/deck-tracker-api/pkg/middleware/requestid"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger

	Tokens  middleware.TokenValidator
	Audit   middleware.AuditRecorder
	Metrics *service.MetricsService

	Auth      *handler.AuthHandler
	Decks     *handler.DeckHandler
	Uploads   *handler.UploadHandler
	Analytics *handler.AnalyticsHandler
	Settings  *handler.SettingsHandler
	Users     *handler.UserHandler
	Health    *handler.MetricsHandler
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.APIPrefix == "" {
		d.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.Health.Health)
	r.GET("/ready", d.Health.Ready)
	r.GET("/metrics", d.Health.Prometheus)
	if d.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.Audit, d.Logger, action, resource)
	}
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleModerator)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleModerator, models.RoleFaculty)

	api := r.Group(d.APIPrefix)
	api.POST("/auth/login", d.Auth.Login)
	api.GET("/static/:token", d.Uploads.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.Tokens))
	secured.GET("/auth/me", d.Auth.Me)

	decks := secured.Group("/decks")
	decks.GET("/assigned", anyRole, d.Decks.Assigned)
	decks.POST("/status", staff, audit(models.AuditActionDeckStatus, "decks"), d.Decks.ChangeStatus)
	decks.POST("/status/bulk", staff, audit(models.AuditActionDeckBulkStatus, "decks"), d.Decks.ChangeStatusBulk)
	decks.POST("/count", staff, audit(models.AuditActionDeckCount, "decks"), d.Decks.SetCount)
	decks.POST("/upload", staff, audit(models.AuditActionDeckUpload, "decks"), d.Uploads.Upload)
	decks.POST("", staff, audit(models.AuditActionDeckCreate, "decks"), d.Decks.Create)
	decks.GET("", staff, d.Decks.List)
	decks.GET("/qr/:qr", staff, d.Decks.GetByQRCode)
	decks.GET("/pamphlets", staff, d.Decks.Pamphlets)
	decks.PATCH("/:id", staff, audit(models.AuditActionDeckUpdate, "decks"), d.Decks.Update)
	decks.DELETE("/:id", adminOnly, audit(models.AuditActionDeckPurge, "decks"), d.Decks.Delete)
	decks.DELETE("", adminOnly, audit(models.AuditActionDeckPurge, "decks"), d.Decks.DeleteAll)
	decks.POST("/reminders", staff, audit(models.AuditActionMailTrigger, "decks"), d.Decks.SendReminders)
	decks.POST("/assignment-email", staff, audit(models.AuditActionMailTrigger, "decks"), d.Decks.SendAssignmentMails)

	templates := secured.Group("/email-templates", staff)
	templates.GET("", d.Settings.ListTemplates)
	templates.GET("/:id", d.Settings.GetTemplate)
	templates.POST("", audit(models.AuditActionTemplateSave, "email_templates"), d.Settings.SaveTemplate)

	smtp := secured.Group("/smtp", staff)
	smtp.GET("", d.Settings.GetSMTP)
	smtp.PUT("", audit(models.AuditActionSMTPSave, "smtp_settings"), d.Settings.SaveSMTP)

	schools := secured.Group("/schools")
	schools.GET("", anyRole, d.Settings.ListSchools)
	schools.GET("/:id", anyRole, d.Settings.GetSchool)
	schools.POST("", staff, audit(models.AuditActionSchoolCreate, "schools"), d.Settings.CreateSchool)

	users := secured.Group("/users")
	users.GET("", staff, d.Users.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleModerator), middleware.RoleSelf), d.Users.Get)
	users.POST("", adminOnly, d.Users.Create)

	analytics := secured.Group("/analytics", staff)
	analytics.GET("/deck-counts", d.Analytics.DeckCounts)
	analytics.GET("/dashboard-stats", d.Analytics.DashboardStats)
	analytics.GET("/daily-trends", d.Analytics.DailyTrends)
	analytics.GET("/evaluator-stats", d.Analytics.EvaluatorStats)

	return r
}
