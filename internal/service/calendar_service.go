package service

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
)

// HolidayLookup resolves a year's holidays.
type HolidayLookup interface {
	HolidaysForYear(ctx context.Context, year int) models.HolidayMap
}

// CalendarService lays out month grids of events and holidays.
type CalendarService struct {
	processor *EventProcessor
	holidays  HolidayLookup
	logger    *zap.Logger
}

// NewCalendarService constructs the grid builder.
func NewCalendarService(processor *EventProcessor, holidays HolidayLookup, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{processor: processor, holidays: holidays, logger: logger}
}

// GridBounds returns the Sunday on or before the first of the month and the
// Saturday on or after its last day.
func GridBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	return start, end
}

// GridDays enumerates every day from start to end inclusive.
func GridDays(start, end time.Time) ([]time.Time, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   end,
	})
	if err != nil {
		return nil, err
	}
	return rule.All(), nil
}

// BuildMonth produces the grid for a month. events are the annotated listings
// already filtered by confirmation; selectedGenres is applied per day.
func (s *CalendarService) BuildMonth(ctx context.Context, year int, month time.Month, events []models.AnnotatedEvent, selectedGenres []string) (models.CalendarGrid, error) {
	loc := s.processor.Location()
	start, end := GridBounds(year, month, loc)
	days, err := GridDays(start, end)
	if err != nil {
		return models.CalendarGrid{}, err
	}

	byDay := groupByDay(FilterByGenre(s.processor.Policy(), events, selectedGenres))

	holidaysByYear := make(map[int]models.HolidayMap, 2)
	if s.holidays != nil {
		for _, y := range []int{start.Year(), end.Year()} {
			if _, ok := holidaysByYear[y]; !ok {
				holidaysByYear[y] = s.holidays.HolidaysForYear(ctx, y)
			}
		}
	}

	today := s.processor.Today()
	cells := make([]models.CalendarCell, 0, len(days))
	for _, day := range days {
		day = StartOfDay(day, loc)
		dayEvents := byDay[dayKey(day)]
		SortDayEvents(dayEvents)

		names := holidaysByYear[day.Year()][MMDD(day)]
		if names == nil {
			names = []string{}
		}
		if dayEvents == nil {
			dayEvents = []models.AnnotatedEvent{}
		}
		cells = append(cells, models.CalendarCell{
			Date:           day,
			IsCurrentMonth: day.Month() == month && day.Year() == year,
			IsPast:         day.Before(today),
			IsToday:        day.Equal(today),
			Holidays:       names,
			Events:         dayEvents,
		})
	}

	return models.CalendarGrid{Year: year, Month: month, Start: start, End: end, Cells: cells}, nil
}

// DayEvents returns the sorted events of a single day after genre filtering.
func (s *CalendarService) DayEvents(events []models.AnnotatedEvent, date time.Time, selectedGenres []string) []models.AnnotatedEvent {
	key := dayKey(StartOfDay(date, s.processor.Location()))
	out := make([]models.AnnotatedEvent, 0)
	for _, event := range FilterByGenre(s.processor.Policy(), events, selectedGenres) {
		if dayKey(event.ScheduleDate) == key {
			out = append(out, event)
		}
	}
	SortDayEvents(out)
	return out
}

func groupByDay(events []models.AnnotatedEvent) map[string][]models.AnnotatedEvent {
	out := make(map[string][]models.AnnotatedEvent)
	for _, event := range events {
		key := dayKey(event.ScheduleDate)
		out[key] = append(out[key], event)
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format(scheduleLayout)
}
