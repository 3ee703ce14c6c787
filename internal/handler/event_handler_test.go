package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/middleware"
)

func eventIDs(events []dto.EventResponse) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestEventHandlerListDefaults(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[dto.EventListResponse](t, rec)
	assert.Equal(t, []string{"today-b", "today-a", "week"}, eventIDs(env.Data.Current))
	assert.Equal(t, []string{"past", "january"}, eventIDs(env.Data.Past))
	assert.Equal(t, []string{"today-b", "today-a", "week"}, eventIDs(env.Data.ThisWeek))
	assert.Equal(t, true, env.Meta["feed_loaded"])
	assert.NotEmpty(t, rec.Header().Get(middleware.ClientIDHeader))
}

func TestEventHandlerListGenreFilter(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/events?genres=애니송", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[dto.EventListResponse](t, rec)
	assert.Equal(t, []string{"today-a"}, eventIDs(env.Data.Current))
	assert.Equal(t, []string{"past"}, eventIDs(env.Data.Past))
	assert.Len(t, env.Data.ThisWeek, 3)

	rec = app.do(t, http.MethodGet, "/api/v1/events?genres=원곡,애니송", "", nil)
	env = decode[dto.EventListResponse](t, rec)
	assert.Equal(t, []string{"today-a"}, eventIDs(env.Data.Current))
	assert.Empty(t, env.Data.Past)
}

func TestEventHandlerListUsesStoredSelection(t *testing.T) {
	app := newTestApp(t)
	clientID := uuid.NewString()
	headers := map[string]string{middleware.ClientIDHeader: clientID}

	rec := app.do(t, http.MethodPut, "/api/v1/settings", `{"selected_genres":["보컬로이드"]}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/events", "", headers)
	env := decode[dto.EventListResponse](t, rec)
	assert.Equal(t, []string{"week"}, eventIDs(env.Data.Current))

	rec = app.do(t, http.MethodGet, "/api/v1/events?genres=all", "", headers)
	env = decode[dto.EventListResponse](t, rec)
	assert.Len(t, env.Data.Current, 3)
}

func TestEventHandlerListIgnoresConfirmedFlag(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/v1/events?confirmed=false",
		"/api/v1/events?confirmed=maybe",
	} {
		rec := app.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		env := decode[dto.EventListResponse](t, rec)
		assert.Equal(t, []string{"today-b", "today-a", "week"}, eventIDs(env.Data.Current), path)
		assert.NotContains(t, eventIDs(env.Data.ThisWeek), "pending", path)
	}
}

func TestEventHandlerPendingRequiresAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/admin/events/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := map[string]string{"Authorization": "Bearer good-token"}
	rec = app.do(t, http.MethodGet, "/api/v1/admin/events/pending", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[dto.EventListResponse](t, rec)
	assert.Equal(t, []string{"pending"}, eventIDs(env.Data.Current))

	rec = app.do(t, http.MethodGet, "/api/v1/admin/events/pending?genres=J-POP", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.EventListResponse](t, rec).Data.Current)
}

func TestEventHandlerGetAndDeepLink(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/events/week", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vocalo", decode[dto.EventResponse](t, rec).Data.EventName)

	rec = app.do(t, http.MethodGet, "/api/v1/events/pending", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/event/week", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/event/missing", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestEventHandlerSearch(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/events/search?q=night", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]dto.EventResponse](t, rec)
	assert.ElementsMatch(t, []string{"today-a", "today-b"}, eventIDs(env.Data))
	assert.EqualValues(t, 2, env.Meta["count"])

	rec = app.do(t, http.MethodGet, "/api/v1/events/search?q="+strings.Repeat("a", 101), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerICS(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/events.ics?genres=보컬로이드", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Vocalo")
	assert.NotContains(t, body, "Old Party")
}
