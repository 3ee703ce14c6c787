package service

import "time"

// CalendarNavigator tracks the displayed month and the selected day. The
// selection is independent of the displayed month.
type CalendarNavigator struct {
	year     int
	month    time.Month
	selected time.Time
	hasDay   bool
}

// NewCalendarNavigator starts on the month containing at.
func NewCalendarNavigator(at time.Time) *CalendarNavigator {
	return &CalendarNavigator{year: at.Year(), month: at.Month()}
}

// NewCalendarNavigatorAt starts on the given month. Out of range months are
// normalised, so month 13 of 2025 becomes January 2026.
func NewCalendarNavigatorAt(year int, month time.Month) *CalendarNavigator {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &CalendarNavigator{year: first.Year(), month: first.Month()}
}

// Displayed returns the month shown.
func (n *CalendarNavigator) Displayed() (int, time.Month) {
	return n.year, n.month
}

// Prev moves one month back and reports whether the year changed, in which
// case the caller needs that year's holidays.
func (n *CalendarNavigator) Prev() (yearChanged bool) {
	return n.shift(-1)
}

// Next moves one month forward and reports whether the year changed.
func (n *CalendarNavigator) Next() (yearChanged bool) {
	return n.shift(1)
}

func (n *CalendarNavigator) shift(delta int) bool {
	prevYear := n.year
	first := time.Date(n.year, n.month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	n.year, n.month = first.Year(), first.Month()
	return n.year != prevYear
}

// Select marks date as the selected day.
func (n *CalendarNavigator) Select(date time.Time) {
	n.selected = date
	n.hasDay = true
}

// Selected returns the selected day, if any.
func (n *CalendarNavigator) Selected() (time.Time, bool) {
	return n.selected, n.hasDay
}
