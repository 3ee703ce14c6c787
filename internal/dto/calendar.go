package dto

// CalendarCellResponse is one day of the month grid.
type CalendarCellResponse struct {
	Date           string          `json:"date"`
	IsCurrentMonth bool            `json:"is_current_month"`
	IsPast         bool            `json:"is_past"`
	IsToday        bool            `json:"is_today"`
	Holidays       []string        `json:"holidays"`
	Events         []EventResponse `json:"events"`
}

// CalendarDayResponse lists the events and holidays of a selected day.
type CalendarDayResponse struct {
	Date     string          `json:"date"`
	Holidays []string        `json:"holidays"`
	Events   []EventResponse `json:"events"`
}

// CalendarResponse is a whole-week month grid.
type CalendarResponse struct {
	Year        int                    `json:"year"`
	Month       int                    `json:"month"`
	Start       string                 `json:"start"`
	End         string                 `json:"end"`
	YearChanged bool                   `json:"year_changed"`
	Cells       []CalendarCellResponse `json:"cells"`
	Selected    *CalendarDayResponse   `json:"selected,omitempty"`
}

// HolidayYearResponse maps MMDD keys to holiday names for a year.
type HolidayYearResponse struct {
	Year     int                 `json:"year"`
	Holidays map[string][]string `json:"holidays"`
}

// HolidayDateResponse lists the holidays of one date.
type HolidayDateResponse struct {
	Date     string   `json:"date"`
	Holidays []string `json:"holidays"`
}

// HolidayCacheResponse reports the cached years after a maintenance action.
type HolidayCacheResponse struct {
	CachedYears []int `json:"cached_years"`
	Queued      []int `json:"queued,omitempty"`
}
