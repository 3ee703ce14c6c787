package service

import "github.com/ankr-events/ankr-api/internal/models"

// MultiGenreMatchPolicy decides how an event's tags are matched against the
// selected genres. The sentinel models.GenreAll always matches.
type MultiGenreMatchPolicy int

const (
	// AnyIfSingleAllIfMultiple is the historical behaviour of the public
	// calendar: one selected genre is a membership test, several selected
	// genres must all be present on the event.
	AnyIfSingleAllIfMultiple MultiGenreMatchPolicy = iota
	// AllSelected requires every selected genre regardless of count.
	AllSelected
	// AnySelected accepts an event carrying at least one selected genre.
	AnySelected
)

func (p MultiGenreMatchPolicy) String() string {
	switch p {
	case AllSelected:
		return "all_selected"
	case AnySelected:
		return "any_selected"
	default:
		return "any_if_single_all_if_multiple"
	}
}

// IsUnfiltered reports whether a selection bypasses genre filtering.
func IsUnfiltered(selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, genre := range selected {
		if genre == models.GenreAll {
			return true
		}
	}
	return false
}

// Match reports whether an event carrying tags passes the selection.
func (p MultiGenreMatchPolicy) Match(tags []string, selected []string) bool {
	if IsUnfiltered(selected) {
		return true
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}
	requireAll := p == AllSelected || (p == AnyIfSingleAllIfMultiple && len(selected) > 1)
	for _, genre := range selected {
		_, ok := tagSet[genre]
		if requireAll && !ok {
			return false
		}
		if !requireAll && ok {
			return true
		}
	}
	return requireAll
}

// FilterByGenre keeps the events matching the selection, preserving order.
func FilterByGenre[T interface{ Genres() []string }](policy MultiGenreMatchPolicy, events []T, selected []string) []T {
	if IsUnfiltered(selected) {
		return events
	}
	out := make([]T, 0, len(events))
	for _, event := range events {
		if policy.Match(event.Genres(), selected) {
			out = append(out, event)
		}
	}
	return out
}
