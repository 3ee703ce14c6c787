package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type eventQueries interface {
	List(query dto.EventQuery) dto.EventListResponse
	Search(query string) []dto.EventResponse
	Get(id string) (dto.EventResponse, error)
	ICS(ctx context.Context, genres []string) string
}

type feedStatus interface {
	Loaded() bool
	UpdatedAt() time.Time
}

// EventHandler serves the event listings.
type EventHandler struct {
	events   eventQueries
	feed     feedStatus
	settings settingsLoader
}

// NewEventHandler constructs the handler. settings may be nil.
func NewEventHandler(events eventQueries, feed feedStatus, settings settingsLoader) *EventHandler {
	return &EventHandler{events: events, feed: feed, settings: settings}
}

// List godoc
// @Summary Event listings
// @Description Current, past and this-week listings of confirmed events filtered by genre
// @Tags Events
// @Produce json
// @Param genres query string false "Comma separated genres; defaults to the client's stored selection"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	res := h.events.List(dto.EventQuery{Genres: selectedGenres(c, h.settings), Confirmed: true})
	response.JSON(c, http.StatusOK, res, feedMeta(c, h.feed))
}

// Pending godoc
// @Summary Unconfirmed event listings
// @Description Events still awaiting approval, split like the public listings
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param genres query string false "Comma separated genres"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/events/pending [get]
func (h *EventHandler) Pending(c *gin.Context) {
	genres, ok := parseGenres(c)
	if !ok {
		genres = []string{models.GenreAll}
	}
	res := h.events.List(dto.EventQuery{Genres: genres, Confirmed: false})
	response.JSON(c, http.StatusOK, res, feedMeta(c, h.feed))
}

// Search godoc
// @Summary Search confirmed events
// @Tags Events
// @Produce json
// @Param q query string true "Text matched against name, venue and genres"
// @Success 200 {object} response.Envelope
// @Router /events/search [get]
func (h *EventHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) > 100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "q is too long"))
		return
	}
	results := h.events.Search(query)
	response.JSON(c, http.StatusOK, results, map[string]interface{}{"count": len(results)})
}

// Get godoc
// @Summary Event detail
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// ICS godoc
// @Summary Confirmed events as iCalendar
// @Tags Events
// @Produce text/calendar
// @Param genres query string false "Comma separated genres"
// @Success 200 {string} string
// @Router /events.ics [get]
func (h *EventHandler) ICS(c *gin.Context) {
	body := h.events.ICS(c.Request.Context(), selectedGenres(c, h.settings))
	c.Header("Content-Disposition", `attachment; filename="ankr-events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// DeepLink resolves a shared event link. Unknown or unconfirmed events send
// the browser back to the landing page.
func (h *EventHandler) DeepLink(c *gin.Context) {
	event, err := h.events.Get(c.Param("id"))
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			c.Redirect(http.StatusFound, "/")
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}
