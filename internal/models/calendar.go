package models

import "time"

// CalendarCell is one day of a month grid.
type CalendarCell struct {
	Date           time.Time
	IsCurrentMonth bool
	IsPast         bool
	IsToday        bool
	Holidays       []string
	Events         []AnnotatedEvent
}

// CalendarGrid covers whole weeks, Sunday through Saturday, around a month.
type CalendarGrid struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
	Cells []CalendarCell
}
