package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	"github.com/ankr-events/ankr-api/internal/service"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type calendarEvents interface {
	Listed(confirmed bool) []models.AnnotatedEvent
	Decorate(event models.AnnotatedEvent) dto.EventResponse
	Today() time.Time
}

type calendarBuilder interface {
	BuildMonth(ctx context.Context, year int, month time.Month, events []models.AnnotatedEvent, selectedGenres []string) (models.CalendarGrid, error)
	DayEvents(events []models.AnnotatedEvent, date time.Time, selectedGenres []string) []models.AnnotatedEvent
}

type dayHolidays interface {
	HolidayForDate(ctx context.Context, date time.Time) []string
}

// CalendarHandler serves the month grid and day listings.
type CalendarHandler struct {
	events   calendarEvents
	calendar calendarBuilder
	holidays dayHolidays
	feed     feedStatus
	settings settingsLoader
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(events calendarEvents, calendar calendarBuilder, holidays dayHolidays, feed feedStatus, settings settingsLoader) *CalendarHandler {
	return &CalendarHandler{events: events, calendar: calendar, holidays: holidays, feed: feed, settings: settings}
}

// Month godoc
// @Summary Month calendar grid
// @Description Whole weeks from Sunday to Saturday with holidays and sorted day events
// @Tags Calendar
// @Produce json
// @Param year query int false "Year; defaults to the current year"
// @Param month query int false "Month 1-12; defaults to the current month"
// @Param nav query string false "prev or next relative to year/month"
// @Param selected query string false "Selected day (YYYY-MM-DD)"
// @Param genres query string false "Comma separated genres"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	today := h.events.Today()
	loc := today.Location()

	year, month := today.Year(), today.Month()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		year = parsed
	}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12"))
			return
		}
		month = time.Month(parsed)
	}
	nav := service.NewCalendarNavigatorAt(year, month)
	var yearChanged bool
	switch strings.ToLower(strings.TrimSpace(c.Query("nav"))) {
	case "":
	case "prev":
		yearChanged = nav.Prev()
	case "next":
		yearChanged = nav.Next()
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "nav must be prev or next"))
		return
	}
	if raw := c.Query("selected"); raw != "" {
		date, err := parseDate(raw, loc)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := checkHolidayYear(date.Year(), today); err != nil {
			response.Error(c, err)
			return
		}
		nav.Select(date)
	}

	genres := selectedGenres(c, h.settings)
	events := h.events.Listed(true)
	displayedYear, displayedMonth := nav.Displayed()
	if err := checkHolidayYear(displayedYear, today); err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.calendar.BuildMonth(c.Request.Context(), displayedYear, displayedMonth, events, genres)
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.CalendarResponse{
		Year:        grid.Year,
		Month:       int(grid.Month),
		Start:       grid.Start.Format(dateLayout),
		End:         grid.End.Format(dateLayout),
		YearChanged: yearChanged,
		Cells:       make([]dto.CalendarCellResponse, 0, len(grid.Cells)),
	}
	for _, cell := range grid.Cells {
		res.Cells = append(res.Cells, dto.CalendarCellResponse{
			Date:           cell.Date.Format(dateLayout),
			IsCurrentMonth: cell.IsCurrentMonth,
			IsPast:         cell.IsPast,
			IsToday:        cell.IsToday,
			Holidays:       cell.Holidays,
			Events:         h.decorate(cell.Events),
		})
	}
	if selected, ok := nav.Selected(); ok {
		day := h.day(c.Request.Context(), events, selected, genres)
		res.Selected = &day
	}

	response.JSON(c, http.StatusOK, res, feedMeta(c, h.feed))
}

// Day godoc
// @Summary Events of one day
// @Tags Calendar
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param genres query string false "Comma separated genres"
// @Success 200 {object} response.Envelope
// @Router /calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	raw := c.Query("date")
	if strings.TrimSpace(raw) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	today := h.events.Today()
	date, err := parseDate(raw, today.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := checkHolidayYear(date.Year(), today); err != nil {
		response.Error(c, err)
		return
	}

	day := h.day(c.Request.Context(), h.events.Listed(true), date, selectedGenres(c, h.settings))
	response.JSON(c, http.StatusOK, day, feedMeta(c, h.feed))
}

func (h *CalendarHandler) day(ctx context.Context, events []models.AnnotatedEvent, date time.Time, genres []string) dto.CalendarDayResponse {
	holidays := h.holidays.HolidayForDate(ctx, date)
	if holidays == nil {
		holidays = []string{}
	}
	return dto.CalendarDayResponse{
		Date:     date.Format(dateLayout),
		Holidays: holidays,
		Events:   h.decorate(h.calendar.DayEvents(events, date, genres)),
	}
}

func (h *CalendarHandler) decorate(events []models.AnnotatedEvent) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, h.events.Decorate(event))
	}
	return out
}
