package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/middleware"
	"github.com/ankr-events/ankr-api/internal/models"
)

// Handlers groups every HTTP handler served by the API.
type Handlers struct {
	Events   *EventHandler
	Calendar *CalendarHandler
	Holidays *HolidayHandler
	Settings *SettingsHandler
	Receipts *ReceiptHandler
	Auth     *AuthHandler
	Admin    *AdminHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the API under prefix plus the root level probes.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, tokens middleware.TokenValidator, logger *zap.Logger) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/event/:id", h.Events.DeepLink)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta(), middleware.ClientID())

	api.GET("/events", h.Events.List)
	api.GET("/events.ics", h.Events.ICS)
	api.GET("/events/search", h.Events.Search)
	api.GET("/events/:id", h.Events.Get)

	api.GET("/calendar", h.Calendar.Month)
	api.GET("/calendar/day", h.Calendar.Day)

	api.GET("/holidays", h.Holidays.Date)
	api.GET("/holidays/:year", h.Holidays.Year)

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Update)
	api.DELETE("/settings", h.Settings.Reset)
	api.POST("/settings/genres/toggle", h.Settings.ToggleGenre)

	api.GET("/receipts/candidates", h.Receipts.Candidates)
	api.POST("/receipts", h.Receipts.Create)
	api.GET("/receipts/download", h.Receipts.Download)

	api.POST("/admin/login", h.Auth.Login)
	admin := api.Group("/admin", middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/holidays/cache/clear", middleware.Audit(logger, "holiday_cache_clear"), h.Admin.ClearHolidayCache)
	admin.POST("/holidays/prefetch", middleware.Audit(logger, "holiday_prefetch"), h.Admin.PrefetchHolidays)
	admin.POST("/maintenance/cleanup", middleware.Audit(logger, "maintenance_cleanup"), h.Admin.Cleanup)
	admin.GET("/metrics", h.Admin.Metrics)
	admin.GET("/events/pending", h.Events.Pending)
}
