package models

import (
	"strings"
	"time"
)

// GenreAll is the sentinel selection that disables genre filtering.
const GenreAll = "all"

// GenreOriginal marks events built around original tracks; they lead a day's listing.
const GenreOriginal = "원곡"

// Event is a record from the upstream realtime store. It is read-only here.
type Event struct {
	ID           string `json:"id"`
	EventName    string `json:"event_name"`
	Schedule     string `json:"schedule"`
	TimeStart    string `json:"time_start,omitempty"`
	TimeEntrance string `json:"time_entrance,omitempty"`
	TimeEnd      string `json:"time_end,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Location     string `json:"location,omitempty"`
	ImgURL       string `json:"img_url,omitempty"`
	EventURL     string `json:"event_url,omitempty"`
	Etc          string `json:"etc,omitempty"`
	Confirm      bool   `json:"confirm"`
}

// Timestamp layouts seen in the upstream store, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp reads one of the optional time fields. Values without a zone
// are interpreted in loc. ok is false for empty or unreadable input.
func ParseTimestamp(raw string, loc *time.Location) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed.In(loc), true
		}
	}
	return time.Time{}, false
}

// Genres splits the comma separated genre field into trimmed, non-empty tags.
func (e Event) Genres() []string {
	if strings.TrimSpace(e.Genre) == "" {
		return nil
	}
	parts := strings.Split(e.Genre, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// PrimaryGenre is the first listed tag, or "" when the event has none.
func (e Event) PrimaryGenre() string {
	tags := e.Genres()
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// HasGenre reports whether tag is one of the event's genres.
func (e Event) HasGenre(tag string) bool {
	for _, g := range e.Genres() {
		if g == tag {
			return true
		}
	}
	return false
}

// AnnotatedEvent carries the values derived for the current day.
type AnnotatedEvent struct {
	Event
	ScheduleDate time.Time `json:"schedule_date"`
	IsPast       bool      `json:"is_past"`
}

// EventViews are the three derived listings served to clients.
type EventViews struct {
	Current  []AnnotatedEvent
	Past     []AnnotatedEvent
	ThisWeek []AnnotatedEvent
}
