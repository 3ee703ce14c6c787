package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type holidayQueries interface {
	HolidaysForYear(ctx context.Context, year int) models.HolidayMap
	HolidayForDate(ctx context.Context, date time.Time) []string
}

// HolidayHandler exposes the public holiday cache.
type HolidayHandler struct {
	holidays holidayQueries
	loc      *time.Location
	now      func() time.Time
}

// NewHolidayHandler constructs the handler.
func NewHolidayHandler(holidays holidayQueries, loc *time.Location) *HolidayHandler {
	if loc == nil {
		loc = time.Local
	}
	return &HolidayHandler{holidays: holidays, loc: loc, now: time.Now}
}

// WithClock overrides the clock used to bound requested years.
func (h *HolidayHandler) WithClock(now func() time.Time) *HolidayHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *HolidayHandler) today() time.Time {
	return h.now().In(h.loc)
}

// Year godoc
// @Summary Public holidays of a year
// @Description Keys are MMDD. Months the upstream API failed to answer are absent. Only years within five of the current one are served.
// @Tags Holidays
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} response.Envelope
// @Router /holidays/{year} [get]
func (h *HolidayHandler) Year(c *gin.Context) {
	year, err := strconv.Atoi(strings.TrimSpace(c.Param("year")))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	if err := checkHolidayYear(year, h.today()); err != nil {
		response.Error(c, err)
		return
	}

	holidays := h.holidays.HolidaysForYear(c.Request.Context(), year)
	out := make(map[string][]string, len(holidays))
	for key, names := range holidays {
		out[key] = names
	}
	response.OK(c, dto.HolidayYearResponse{Year: year, Holidays: out})
}

// Date godoc
// @Summary Public holidays of a date
// @Tags Holidays
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *HolidayHandler) Date(c *gin.Context) {
	raw := c.Query("date")
	if strings.TrimSpace(raw) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	date, err := parseDate(raw, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := checkHolidayYear(date.Year(), h.today()); err != nil {
		response.Error(c, err)
		return
	}

	names := h.holidays.HolidayForDate(c.Request.Context(), date)
	if names == nil {
		names = []string{}
	}
	response.OK(c, dto.HolidayDateResponse{Date: date.Format(dateLayout), Holidays: names})
}
