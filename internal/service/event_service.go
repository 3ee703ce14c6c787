package service

import (
	"context"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

const icsProductID = "-//ANKR//Event Calendar//KO"

// EventSnapshotter exposes the current upstream event list.
type EventSnapshotter interface {
	Snapshot() []models.Event
}

// EventService answers the event queries of the public API.
type EventService struct {
	feed      EventSnapshotter
	processor *EventProcessor
	links     *LinkService
	logger    *zap.Logger
}

// NewEventService constructs the query service.
func NewEventService(feed EventSnapshotter, processor *EventProcessor, links *LinkService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{feed: feed, processor: processor, links: links, logger: logger}
}

// Views derives the listings for the given filters.
func (s *EventService) Views(query dto.EventQuery) models.EventViews {
	return s.processor.Process(s.feed.Snapshot(), query.Genres, query.Confirmed)
}

// List derives and decorates the listings.
func (s *EventService) List(query dto.EventQuery) dto.EventListResponse {
	views := s.Views(query)
	return dto.EventListResponse{
		Current:  s.decorateAll(views.Current),
		Past:     s.decorateAll(views.Past),
		ThisWeek: s.decorateAll(views.ThisWeek),
	}
}

// Listed returns every event with the given confirmation, upcoming first then
// past, the order the calendar and search operate on.
func (s *EventService) Listed(confirmed bool) []models.AnnotatedEvent {
	views := s.processor.Process(s.feed.Snapshot(), []string{models.GenreAll}, confirmed)
	out := make([]models.AnnotatedEvent, 0, len(views.Current)+len(views.Past))
	out = append(out, views.Current...)
	return append(out, views.Past...)
}

// Get returns a confirmed event by id. Missing and unconfirmed events are
// both reported as not found.
func (s *EventService) Get(id string) (dto.EventResponse, error) {
	for _, event := range s.Listed(true) {
		if event.ID == id {
			return s.Decorate(event), nil
		}
	}
	return dto.EventResponse{}, appErrors.Clone(appErrors.ErrNotFound, "event not found")
}

// Search matches confirmed events whose name, location or any genre tag
// contains query, ignoring case. A blank query matches nothing.
func (s *EventService) Search(query string) []dto.EventResponse {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []dto.EventResponse{}
	}
	matches := make([]models.AnnotatedEvent, 0)
	for _, event := range s.Listed(true) {
		if matchesQuery(event.Event, query) {
			matches = append(matches, event)
		}
	}
	return s.decorateAll(matches)
}

func matchesQuery(event models.Event, query string) bool {
	if strings.Contains(strings.ToLower(event.EventName), query) ||
		strings.Contains(strings.ToLower(event.Location), query) {
		return true
	}
	for _, genre := range event.Genres() {
		if strings.Contains(strings.ToLower(genre), query) {
			return true
		}
	}
	return false
}

// ICS renders confirmed events as an iCalendar feed of all-day entries.
func (s *EventService) ICS(_ context.Context, genres []string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("ANKR DJ Events")
	cal.SetXWRTimezone(s.processor.Location().String())

	stamp := s.processor.now().UTC()
	for _, event := range FilterByGenre(s.processor.Policy(), s.Listed(true), genres) {
		vevent := cal.AddEvent(event.ID + "@ankr-events")
		vevent.SetDtStampTime(stamp)
		vevent.SetAllDayStartAt(event.ScheduleDate)
		vevent.SetAllDayEndAt(event.ScheduleDate.AddDate(0, 0, 1))
		vevent.SetSummary(event.EventName)
		if event.Location != "" {
			vevent.SetLocation(event.Location)
		}
		if event.Etc != "" {
			vevent.SetDescription(event.Etc)
		}
		if event.EventURL != "" {
			vevent.SetURL(event.EventURL)
		}
	}
	return cal.Serialize()
}

// Decorate attaches links and labels to an annotated event.
func (s *EventService) Decorate(event models.AnnotatedEvent) dto.EventResponse {
	genres := event.Genres()
	if genres == nil {
		genres = []string{}
	}
	return dto.EventResponse{
		ID:                event.ID,
		EventName:         event.EventName,
		Schedule:          event.Schedule,
		ScheduleLabel:     s.links.ScheduleLabel(event.ScheduleDate, event.TimeStart),
		TimeStart:         event.TimeStart,
		TimeEntrance:      event.TimeEntrance,
		TimeEnd:           event.TimeEnd,
		Genre:             event.Genre,
		Genres:            genres,
		Location:          event.Location,
		MapURL:            s.links.MapURL(event.Location),
		ImgURL:            event.ImgURL,
		ImageSmallURL:     ImageURL(event.ImgURL, "small"),
		ImageLargeURL:     ImageURL(event.ImgURL, "large"),
		EventURL:          event.EventURL,
		Etc:               event.Etc,
		Confirm:           event.Confirm,
		IsPast:            event.IsPast,
		GoogleCalendarURL: s.links.GoogleCalendarURL(event.Event, event.ScheduleDate),
		DeepLink:          DeepLink(event.ID),
	}
}

func (s *EventService) decorateAll(events []models.AnnotatedEvent) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, s.Decorate(event))
	}
	return out
}

// Today returns the start of the current day in the service's zone.
func (s *EventService) Today() time.Time {
	return s.processor.Today()
}
