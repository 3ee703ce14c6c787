package service

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankr-events/ankr-api/internal/models"
)

func TestLinkServiceMapURL(t *testing.T) {
	links := NewLinkService(seoul, map[string]string{"새 공연장": "https://map.example/new"})

	assert.Contains(t, links.MapURL("학여울 SETEC"), "place/11639873")
	assert.Equal(t, "https://map.example/new", links.MapURL("새 공연장"))
	assert.Equal(t, "https://map.naver.com/p/search/%EA%B0%95%EB%82%A8%20%ED%99%80", links.MapURL("강남 홀"))
	assert.Empty(t, links.MapURL(""))
}

func TestLoadVenueLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yaml")
	require.NoError(t, os.WriteFile(path, []byte("venues:\n  \"홍대 프리버드\": https://map.example/freebird\n"), 0o600))

	venues, err := LoadVenueLinks(path)
	require.NoError(t, err)
	links := NewLinkService(seoul, venues)
	assert.Equal(t, "https://map.example/freebird", links.MapURL("홍대 프리버드"))

	venues, err = LoadVenueLinks("")
	require.NoError(t, err)
	assert.Nil(t, venues)

	_, err = LoadVenueLinks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestImageURL(t *testing.T) {
	raw := "https://cdn.example/poster?name=orig&v=2"
	assert.Equal(t, "https://cdn.example/poster?name=small&v=2", ImageURL(raw, "small"))
	assert.Equal(t, "https://cdn.example/poster?name=large&v=2", ImageURL(raw, "large"))
	assert.Equal(t, "https://cdn.example/plain.png", ImageURL("https://cdn.example/plain.png", "small"))
	assert.Equal(t, PlaceholderImage, ImageURL("", "small"))
}

func TestGoogleCalendarURL(t *testing.T) {
	links := NewLinkService(seoul, nil)
	event := models.Event{EventName: "Night & Day", Location: "신림 시공간", Etc: "door 7pm", EventURL: "https://x.example/e"}

	raw := links.GoogleCalendarURL(event, time.Date(2025, time.December, 31, 0, 0, 0, 0, seoul))
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Night & Day", q.Get("text"))
	assert.Equal(t, "20251231/20260101", q.Get("dates"))
	assert.Equal(t, "true", q.Get("allday"))
	assert.Equal(t, "door 7pm", q.Get("details"))
	assert.Equal(t, "신림 시공간", q.Get("location"))
	assert.Equal(t, "https://x.example/e", q.Get("url"))
}

func TestScheduleLabel(t *testing.T) {
	links := NewLinkService(seoul, nil)
	date := time.Date(2025, time.March, 15, 0, 0, 0, 0, seoul)

	assert.Equal(t, "2025-03-15 (토)", links.ScheduleLabel(date, ""))
	assert.Equal(t, "2025-03-15 (토) ☀️", links.ScheduleLabel(date, "2025-03-15T13:00:00+09:00"))
	assert.Equal(t, "2025-03-15 (토) 🌙", links.ScheduleLabel(date, "2025-03-15T18:00:00+09:00"))
	assert.Equal(t, "2025-03-15 (토) 🌙", links.ScheduleLabel(date, "2025-03-15T05:59"))
}
