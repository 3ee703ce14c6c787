package dto

// EventResponse is an event decorated with the links and labels clients render.
type EventResponse struct {
	ID                string   `json:"id"`
	EventName         string   `json:"event_name"`
	Schedule          string   `json:"schedule"`
	ScheduleLabel     string   `json:"schedule_label"`
	TimeStart         string   `json:"time_start,omitempty"`
	TimeEntrance      string   `json:"time_entrance,omitempty"`
	TimeEnd           string   `json:"time_end,omitempty"`
	Genre             string   `json:"genre,omitempty"`
	Genres            []string `json:"genres"`
	Location          string   `json:"location,omitempty"`
	MapURL            string   `json:"map_url,omitempty"`
	ImgURL            string   `json:"img_url,omitempty"`
	ImageSmallURL     string   `json:"image_small_url"`
	ImageLargeURL     string   `json:"image_large_url"`
	EventURL          string   `json:"event_url,omitempty"`
	Etc               string   `json:"etc,omitempty"`
	Confirm           bool     `json:"confirm"`
	IsPast            bool     `json:"is_past"`
	GoogleCalendarURL string   `json:"google_calendar_url"`
	DeepLink          string   `json:"deep_link"`
}

// EventListResponse carries the three derived listings.
type EventListResponse struct {
	Current  []EventResponse `json:"current"`
	Past     []EventResponse `json:"past"`
	ThisWeek []EventResponse `json:"this_week"`
}

// EventQuery are the filters accepted by the listing endpoints.
type EventQuery struct {
	Genres    []string
	Confirmed bool
}
