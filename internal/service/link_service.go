package service

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ankr-events/ankr-api/internal/models"
)

// PlaceholderImage is served for events without artwork.
const PlaceholderImage = "/dummy.svg"

const (
	naverMapSearchURL  = "https://map.naver.com/p/search/"
	googleCalendarURL  = "https://calendar.google.com/calendar/render"
	googleDateLayout   = "20060102"
	dayMarkerStartHour = 6
	dayMarkerEndHour   = 18
	dayMarker          = "☀️"
	nightMarker        = "🌙"
)

var weekdayNames = [...]string{"일", "월", "화", "수", "목", "금", "토"}

var imageSizeParam = regexp.MustCompile(`(name=)[^&]*`)

// defaultVenueLinks are hand-picked map pages for recurring venues.
var defaultVenueLinks = map[string]string{
	"을지로 H․ai":   "https://map.naver.com/p/search/%EC%84%9C%EC%9A%B8%20%EC%A4%91%EA%B5%AC%20%EC%9D%84%EC%A7%80%EB%A1%9C%20146-1/address/14136925.4252946,4518328.7316046,%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C%20%EC%A4%91%EA%B5%AC%20%EC%9D%84%EC%A7%80%EB%A1%9C%20146-1?c=15.06,0,0,0,dh",
	"합정 아소비스테이션": "https://map.naver.com/p/search/%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C%20%EB%A7%88%ED%8F%AC%EA%B5%AC%20%EC%96%91%ED%99%94%EB%A1%9C%208%EA%B8%B8%2016-22/address/14128137.2301702,4515967.6851904,%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C%20%EB%A7%88%ED%8F%AC%EA%B5%AC%20%EC%96%91%ED%99%94%EB%A1%9C8%EA%B8%B8%2016-22,new?c=19.85,0,0,0,dh&isCorrectAnswer=true",
	"대전 SC아트홀":   "https://map.naver.com/p/entry/address/14184749.1579633,4345592.5908594,%EB%8C%80%EC%A0%84%20%EC%A4%91%EA%B5%AC%20%EB%B3%B4%EB%AC%B8%EB%A1%9C260%EB%B2%88%EA%B8%B8%2030?c=15.00,0,0,0,dh",
	"안암 블루라움":    "https://map.naver.com/p/search/%EC%95%88%EC%95%94%20%EB%B8%94%EB%A3%A8%EB%9D%BC%EC%9B%80/place/804212537?c=15.00,0,0,0,dh&placePath=%3Fentry%253Dbmp",
	"학여울 SETEC":  "https://map.naver.com/p/entry/place/11639873?placePath=%2Fhome",
	"신림 시공간":     "https://map.naver.com/p/search/%EC%84%9C%EC%9A%B8%20%EA%B4%80%EC%95%85%EA%B5%AC%20%EA%B4%80%EC%B2%9C%EB%A1%9C%2025/address/14129552.2122177,4506514.6240075,%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C%20%EA%B4%80%EC%95%85%EA%B5%AC%20%EA%B4%80%EC%B2%9C%EB%A1%9C%2025,new?c=14135850.9361736%2C4517208.0819429%2C17.54%2C0%2C0%2C0%2Cdh&isCorrectAnswer=true",
	"홍대 프리버드":    "https://map.naver.com/p/entry/address/14128816.8022657,4515962.2373566,%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C%20%EB%A7%88%ED%8F%AC%EA%B5%AC%20%EC%99%80%EC%9A%B0%EC%82%B0%EB%A1%9C17%EA%B8%B8%2019-22?c=16.17,0,0,0,dh",
}

type venueFile struct {
	Venues map[string]string `yaml:"venues"`
}

// LoadVenueLinks reads a YAML file of the form
//
//	venues:
//	  "venue name": https://map.example/...
//
// An empty path returns nil.
func LoadVenueLinks(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue file: %w", err)
	}
	var file venueFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse venue file: %w", err)
	}
	return file.Venues, nil
}

// LinkService builds the outbound links and labels attached to events.
type LinkService struct {
	venues map[string]string
	loc    *time.Location
}

// NewLinkService merges overrides over the built-in venue table.
func NewLinkService(loc *time.Location, overrides map[string]string) *LinkService {
	if loc == nil {
		loc = time.Local
	}
	venues := make(map[string]string, len(defaultVenueLinks)+len(overrides))
	for name, link := range defaultVenueLinks {
		venues[name] = link
	}
	for name, link := range overrides {
		venues[name] = link
	}
	return &LinkService{venues: venues, loc: loc}
}

// MapURL returns the venue's map page, falling back to a map search.
func (s *LinkService) MapURL(location string) string {
	if location == "" {
		return ""
	}
	if link, ok := s.venues[location]; ok {
		return link
	}
	return naverMapSearchURL + url.PathEscape(location)
}

// ImageURL rewrites the size parameter of an artwork URL, or returns the
// placeholder when the event has none.
func ImageURL(raw, size string) string {
	if raw == "" {
		return PlaceholderImage
	}
	return imageSizeParam.ReplaceAllString(raw, "${1}"+size)
}

// GoogleCalendarURL builds an all-day event template link.
func (s *LinkService) GoogleCalendarURL(event models.Event, date time.Time) string {
	date = date.In(s.loc)
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", event.EventName)
	params.Set("dates", date.Format(googleDateLayout)+"/"+date.AddDate(0, 0, 1).Format(googleDateLayout))
	params.Set("allday", "true")
	if event.Etc != "" {
		params.Set("details", event.Etc)
	}
	if event.Location != "" {
		params.Set("location", event.Location)
	}
	if event.EventURL != "" {
		params.Set("url", event.EventURL)
	}
	return googleCalendarURL + "?" + params.Encode()
}

// ScheduleLabel renders "YYYY-MM-DD (요일)", followed by a day or night
// marker when the start time is known.
func (s *LinkService) ScheduleLabel(date time.Time, timeStart string) string {
	date = date.In(s.loc)
	label := fmt.Sprintf("%s (%s)", date.Format(scheduleLayout), weekdayNames[date.Weekday()])
	start, ok := models.ParseTimestamp(timeStart, s.loc)
	if !ok {
		return label
	}
	if hour := start.Hour(); hour >= dayMarkerStartHour && hour < dayMarkerEndHour {
		return label + " " + dayMarker
	}
	return label + " " + nightMarker
}

// DeepLink is the browser route of an event.
func DeepLink(id string) string {
	return "/event/" + url.PathEscape(strings.TrimSpace(id))
}
