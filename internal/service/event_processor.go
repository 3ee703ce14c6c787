package service

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ankr-events/ankr-api/internal/models"
)

const (
	scheduleLayout = "2006-01-02"
	thisWeekDays   = 7
)

// EventProcessor derives the listings shown to clients from a raw snapshot.
// All date arithmetic happens in loc, the audience's local zone.
type EventProcessor struct {
	loc    *time.Location
	policy MultiGenreMatchPolicy
	now    func() time.Time
	logger *zap.Logger
}

// NewEventProcessor constructs a processor. A nil loc means time.Local.
func NewEventProcessor(loc *time.Location, policy MultiGenreMatchPolicy, logger *zap.Logger) *EventProcessor {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventProcessor{loc: loc, policy: policy, now: time.Now, logger: logger}
}

// WithClock overrides the time source, used by tests.
func (p *EventProcessor) WithClock(now func() time.Time) *EventProcessor {
	if now != nil {
		p.now = now
	}
	return p
}

// Location returns the zone used for all calendar math.
func (p *EventProcessor) Location() *time.Location { return p.loc }

// Policy returns the active genre match policy.
func (p *EventProcessor) Policy() MultiGenreMatchPolicy { return p.policy }

// Today returns the start of the current day.
func (p *EventProcessor) Today() time.Time {
	return StartOfDay(p.now(), p.loc)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseSchedule reads an event's schedule as a calendar date in loc. Plain
// dates are taken as-is; full timestamps are converted to loc first.
func ParseSchedule(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if d, err := time.ParseInLocation(scheduleLayout, raw, loc); err == nil {
		return d, true
	}
	if ts, ok := models.ParseTimestamp(raw, loc); ok {
		return StartOfDay(ts, loc), true
	}
	return time.Time{}, false
}

// FilterConfirmed keeps events whose confirm flag equals showConfirmed.
func FilterConfirmed(events []models.Event, showConfirmed bool) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if event.Confirm == showConfirmed {
			out = append(out, event)
		}
	}
	return out
}

// Annotate attaches the parsed schedule date and past flag. Events whose
// schedule cannot be read are dropped.
func (p *EventProcessor) Annotate(events []models.Event) []models.AnnotatedEvent {
	today := p.Today()
	out := make([]models.AnnotatedEvent, 0, len(events))
	for _, event := range events {
		date, ok := ParseSchedule(event.Schedule, p.loc)
		if !ok {
			p.logger.Debug("skipping event with unreadable schedule", zap.String("id", event.ID), zap.String("schedule", event.Schedule))
			continue
		}
		out = append(out, models.AnnotatedEvent{
			Event:        event,
			ScheduleDate: date,
			IsPast:       date.Before(today),
		})
	}
	return out
}

// Process produces the current, past and this-week listings.
func (p *EventProcessor) Process(events []models.Event, selectedGenres []string, showConfirmed bool) models.EventViews {
	confirmed := FilterConfirmed(events, showConfirmed)
	annotated := p.Annotate(FilterByGenre(p.policy, confirmed, selectedGenres))

	current := make([]models.AnnotatedEvent, 0, len(annotated))
	past := make([]models.AnnotatedEvent, 0)
	for _, event := range annotated {
		if event.IsPast {
			past = append(past, event)
		} else {
			current = append(current, event)
		}
	}
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].ScheduleDate.Before(current[j].ScheduleDate)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].ScheduleDate.After(past[j].ScheduleDate)
	})

	return models.EventViews{
		Current:  current,
		Past:     past,
		ThisWeek: p.thisWeek(p.Annotate(confirmed)),
	}
}

// thisWeek keeps events in [today, today+7d), soonest first.
func (p *EventProcessor) thisWeek(events []models.AnnotatedEvent) []models.AnnotatedEvent {
	start := p.Today()
	end := start.AddDate(0, 0, thisWeekDays)
	out := make([]models.AnnotatedEvent, 0)
	for _, event := range events {
		if !event.ScheduleDate.Before(start) && event.ScheduleDate.Before(end) {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduleDate.Before(out[j].ScheduleDate)
	})
	return out
}

// SortDayEvents orders the events of a single day: original-track events
// first, then by primary genre, then by name, using Korean collation.
func SortDayEvents(events []models.AnnotatedEvent) {
	col := collate.New(language.Korean)
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		aOriginal, bOriginal := a.HasGenre(models.GenreOriginal), b.HasGenre(models.GenreOriginal)
		if aOriginal != bOriginal {
			return aOriginal
		}
		genreA, genreB := a.PrimaryGenre(), b.PrimaryGenre()
		if genreA != genreB {
			return col.CompareString(genreA, genreB) < 0
		}
		return col.CompareString(a.EventName, b.EventName) < 0
	})
}
