package models

// ViewMode selects between the calendar grid and the table listing.
type ViewMode string

const (
	ViewModeCalendar ViewMode = "calendar"
	ViewModeTable    ViewMode = "table"
)

// Valid reports whether the mode is one of the supported values.
func (m ViewMode) Valid() bool {
	return m == ViewModeCalendar || m == ViewModeTable
}

// UserSettings are the persisted view preferences of one client.
type UserSettings struct {
	SelectedGenres []string `json:"selected_genres"`
	ViewMode       ViewMode `json:"view_mode"`
}

// DefaultUserSettings is used whenever stored preferences are absent or unreadable.
func DefaultUserSettings() UserSettings {
	return UserSettings{SelectedGenres: []string{GenreAll}, ViewMode: ViewModeCalendar}
}
