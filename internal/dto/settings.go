package dto

// SettingsResponse is the persisted view preference of a client.
type SettingsResponse struct {
	ClientID       string   `json:"client_id"`
	SelectedGenres []string `json:"selected_genres"`
	ViewMode       string   `json:"view_mode"`
}

// UpdateSettingsRequest replaces the stored preferences. Omitted fields keep
// their current value.
type UpdateSettingsRequest struct {
	SelectedGenres []string `json:"selected_genres" validate:"omitempty,dive,required,max=64"`
	ViewMode       *string  `json:"view_mode" validate:"omitempty,oneof=calendar table"`
}

// ToggleGenreRequest flips one genre in the selection.
type ToggleGenreRequest struct {
	Genre string `json:"genre" validate:"required,max=64"`
}
