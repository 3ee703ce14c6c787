package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
)

type stubHolidayLookup struct {
	years map[int]models.HolidayMap
	calls []int
}

func (s *stubHolidayLookup) HolidaysForYear(ctx context.Context, year int) models.HolidayMap {
	s.calls = append(s.calls, year)
	return s.years[year]
}

func TestGridBoundsCoverWholeWeeks(t *testing.T) {
	for year := 2024; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			start, end := GridBounds(year, month, seoul)
			days, err := GridDays(start, end)
			require.NoError(t, err)

			assert.Equal(t, time.Sunday, start.Weekday())
			assert.Equal(t, time.Saturday, end.Weekday())
			assert.Zero(t, len(days)%7, "%d-%02d", year, month)
			assert.False(t, start.After(time.Date(year, month, 1, 0, 0, 0, 0, seoul)))
			assert.False(t, end.Before(time.Date(year, month+1, 0, 0, 0, 0, 0, seoul)))
		}
	}
}

func TestBuildMonthMarksEveryDayOnce(t *testing.T) {
	svc := NewCalendarService(fixedProcessor(AnyIfSingleAllIfMultiple), &stubHolidayLookup{}, nil)

	for year := 2024; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			grid, err := svc.BuildMonth(context.Background(), year, month, nil, []string{models.GenreAll})
			require.NoError(t, err)

			label := time.Date(year, month, 1, 0, 0, 0, 0, seoul).Format("2006-01")
			daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, seoul).Day()
			require.Zero(t, len(grid.Cells)%7, label)
			assert.Equal(t, time.Sunday, grid.Cells[0].Date.Weekday(), label)
			assert.Equal(t, time.Saturday, grid.Cells[len(grid.Cells)-1].Date.Weekday(), label)

			seen := make(map[string]bool, len(grid.Cells))
			inMonth := make(map[int]int, daysInMonth)
			for _, cell := range grid.Cells {
				key := cell.Date.Format("2006-01-02")
				assert.False(t, seen[key], "%s repeated in %s", key, label)
				seen[key] = true

				sameMonth := cell.Date.Year() == year && cell.Date.Month() == month
				assert.Equal(t, sameMonth, cell.IsCurrentMonth, key)
				if cell.IsCurrentMonth {
					inMonth[cell.Date.Day()]++
				}
			}
			assert.Len(t, inMonth, daysInMonth, label)
			for day := 1; day <= daysInMonth; day++ {
				assert.Equal(t, 1, inMonth[day], "%s day %d", label, day)
			}
		}
	}
}

func TestBuildMonthCells(t *testing.T) {
	processor := fixedProcessor(AnyIfSingleAllIfMultiple)
	holidays := &stubHolidayLookup{years: map[int]models.HolidayMap{
		2025: {"0301": {"삼일절"}, "0303": {"대체공휴일", "임시공휴일"}},
	}}
	svc := NewCalendarService(processor, holidays, zap.NewNop())

	views := processor.Process([]models.Event{
		{ID: "a", EventName: "B night", Schedule: "2025-03-14", Genre: "J-POP", Confirm: true},
		{ID: "b", EventName: "A night", Schedule: "2025-03-14", Genre: "J-POP", Confirm: true},
		{ID: "c", EventName: "Z night", Schedule: "2025-03-14", Genre: "애니송, 원곡", Confirm: true},
		{ID: "d", EventName: "Past", Schedule: "2025-03-01", Genre: "보컬로이드", Confirm: true},
	}, []string{models.GenreAll}, true)
	events := append(append([]models.AnnotatedEvent{}, views.Current...), views.Past...)

	grid, err := svc.BuildMonth(context.Background(), 2025, time.March, events, []string{models.GenreAll})
	require.NoError(t, err)

	// March 2025 starts on a Saturday and ends on a Monday.
	assert.Equal(t, time.Date(2025, time.February, 23, 0, 0, 0, 0, seoul), grid.Start)
	assert.Equal(t, time.Date(2025, time.April, 5, 0, 0, 0, 0, seoul), grid.End)
	require.Len(t, grid.Cells, 42)
	assert.Equal(t, []int{2025}, holidays.calls)

	cellFor := func(day int) models.CalendarCell {
		for _, cell := range grid.Cells {
			if cell.Date.Equal(time.Date(2025, time.March, day, 0, 0, 0, 0, seoul)) {
				return cell
			}
		}
		t.Fatalf("no cell for March %d", day)
		return models.CalendarCell{}
	}

	first := cellFor(1)
	assert.True(t, first.IsCurrentMonth)
	assert.True(t, first.IsPast)
	assert.Equal(t, []string{"삼일절"}, first.Holidays)
	require.Len(t, first.Events, 1)

	assert.Equal(t, []string{"대체공휴일", "임시공휴일"}, cellFor(3).Holidays)

	today := cellFor(12)
	assert.True(t, today.IsToday)
	assert.False(t, today.IsPast)
	assert.Empty(t, today.Holidays)

	assert.Equal(t, []string{"c", "b", "a"}, eventIDs(cellFor(14).Events))
	assert.False(t, grid.Cells[0].IsCurrentMonth)
}

func TestBuildMonthLooksUpBothYears(t *testing.T) {
	processor := fixedProcessor(AnyIfSingleAllIfMultiple)
	holidays := &stubHolidayLookup{years: map[int]models.HolidayMap{
		2025: {"0101": {"신정"}},
		2024: {"1231": {"연말"}},
	}}
	svc := NewCalendarService(processor, holidays, zap.NewNop())

	grid, err := svc.BuildMonth(context.Background(), 2025, time.January, nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2024, 2025}, holidays.calls)
	assert.Equal(t, time.Date(2024, time.December, 29, 0, 0, 0, 0, seoul), grid.Start)
	assert.Equal(t, []string{"연말"}, grid.Cells[2].Holidays)
	assert.Equal(t, []string{"신정"}, grid.Cells[3].Holidays)
}

func TestDayEventsFiltersGenres(t *testing.T) {
	processor := fixedProcessor(AnyIfSingleAllIfMultiple)
	svc := NewCalendarService(processor, nil, zap.NewNop())
	events := processor.Annotate([]models.Event{
		{ID: "x", Schedule: "2025-03-20", Genre: "A, B"},
		{ID: "y", Schedule: "2025-03-20", Genre: "A"},
		{ID: "z", Schedule: "2025-03-21", Genre: "A"},
	})

	day := time.Date(2025, time.March, 20, 15, 0, 0, 0, seoul)
	assert.Equal(t, []string{"x"}, eventIDs(svc.DayEvents(events, day, []string{"A", "B"})))
	assert.Len(t, svc.DayEvents(events, day, []string{models.GenreAll}), 2)
}

func TestCalendarNavigator(t *testing.T) {
	nav := NewCalendarNavigator(time.Date(2025, time.January, 15, 0, 0, 0, 0, seoul))

	assert.True(t, nav.Prev())
	year, month := nav.Displayed()
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.December, month)

	assert.True(t, nav.Next())
	assert.False(t, nav.Next())
	year, month = nav.Displayed()
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.February, month)

	_, ok := nav.Selected()
	assert.False(t, ok)
	picked := time.Date(2025, time.June, 3, 0, 0, 0, 0, seoul)
	nav.Select(picked)
	selected, ok := nav.Selected()
	assert.True(t, ok)
	assert.Equal(t, picked, selected)
	_, month = nav.Displayed()
	assert.Equal(t, time.February, month)

	year, month = NewCalendarNavigatorAt(2025, 13).Displayed()
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.January, month)
}
