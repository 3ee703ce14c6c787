package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/jobs"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type holidayCache interface {
	ClearCache()
	CachedYears() []int
}

type maintenanceQueue interface {
	EnqueuePrefetch(years ...int) error
	EnqueueCleanup() error
}

type metricsSnapshot interface {
	Snapshot() models.SystemMetrics
}

// AdminHandler exposes cache maintenance to authenticated operators.
type AdminHandler struct {
	holidays holidayCache
	jobs     maintenanceQueue
	metrics  metricsSnapshot
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(holidays holidayCache, jobs maintenanceQueue, metrics metricsSnapshot) *AdminHandler {
	return &AdminHandler{holidays: holidays, jobs: jobs, metrics: metrics}
}

// ClearHolidayCache godoc
// @Summary Drop every cached holiday year
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/holidays/cache/clear [post]
func (h *AdminHandler) ClearHolidayCache(c *gin.Context) {
	h.holidays.ClearCache()
	response.OK(c, dto.HolidayCacheResponse{CachedYears: h.holidays.CachedYears()})
}

// PrefetchHolidays godoc
// @Summary Queue a holiday warm-up
// @Description Without years the current and next year are warmed
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param years query string false "Comma separated years"
// @Success 202 {object} response.Envelope
// @Router /admin/holidays/prefetch [post]
func (h *AdminHandler) PrefetchHolidays(c *gin.Context) {
	var years []int
	for _, part := range strings.Split(c.Query("years"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil || year < 1900 || year > 2200 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "years must be between 1900 and 2200"))
			return
		}
		years = append(years, year)
	}

	if err := h.jobs.EnqueuePrefetch(years...); err != nil && !errors.Is(err, jobs.ErrDuplicate) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue prefetch"))
		return
	}
	response.JSON(c, http.StatusAccepted, dto.HolidayCacheResponse{CachedYears: h.holidays.CachedYears(), Queued: years})
}

// Cleanup godoc
// @Summary Queue receipt file cleanup and snapshot pruning
// @Tags Admin
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Router /admin/maintenance/cleanup [post]
func (h *AdminHandler) Cleanup(c *gin.Context) {
	if err := h.jobs.EnqueueCleanup(); err != nil && !errors.Is(err, jobs.ErrDuplicate) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue cleanup"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}

// Metrics godoc
// @Summary Operational summary
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) Metrics(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
