package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFirebaseServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("auth"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFirebaseFetchAllObject(t *testing.T) {
	server := newFirebaseServer(t, `{
		"b-key": {"event_name": "Second", "schedule": "2025-03-02", "confirm": true},
		"10": {"event_name": "Ten", "schedule": "2025-03-10", "confirm": false},
		"2": {"event_name": "Two", "schedule": "2025-03-05", "genre": "J-POP", "confirm": true},
		"a-key": {"id": "custom", "event_name": "First", "schedule": "2025-03-01", "confirm": true},
		"broken": "not an event"
	}`, http.StatusOK)
	defer server.Close()

	repo := NewFirebaseEventRepository(server.Client(), FirebaseConfig{DatabaseURL: server.URL, Path: "data", AuthToken: "secret"}, zap.NewNop())
	events, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	ids := []string{events[0].ID, events[1].ID, events[2].ID, events[3].ID}
	assert.Equal(t, []string{"2", "10", "custom", "b-key"}, ids)
	assert.Equal(t, "J-POP", events[0].Genre)
	assert.True(t, events[0].Confirm)
	assert.False(t, events[1].Confirm)
}

func TestFirebaseFetchAllArrayAndNull(t *testing.T) {
	server := newFirebaseServer(t, `[null, {"event_name": "One", "schedule": "2025-01-01"}]`, http.StatusOK)
	defer server.Close()

	repo := NewFirebaseEventRepository(server.Client(), FirebaseConfig{DatabaseURL: server.URL, Path: "data", AuthToken: "secret"}, nil)
	events, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].ID)

	empty := newFirebaseServer(t, `null`, http.StatusOK)
	defer empty.Close()
	repo = NewFirebaseEventRepository(empty.Client(), FirebaseConfig{DatabaseURL: empty.URL, Path: "data", AuthToken: "secret"}, nil)
	events, err = repo.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFirebaseFetchAllLooseScalars(t *testing.T) {
	server := newFirebaseServer(t, `{
		"0": {"id": 1, "event_name": "A", "schedule": "2025-06-01", "genre": "원곡,리믹스", "confirm": true},
		"1": {"event_name": "B", "schedule": "2025-06-01", "genre": "리믹스", "confirm": "true"},
		"2": {"id": null, "event_name": "C", "schedule": "2025-06-02", "confirm": "nope"},
		"3": {"id": " x9 ", "event_name": "D", "schedule": "2025-06-03"}
	}`, http.StatusOK)
	defer server.Close()

	repo := NewFirebaseEventRepository(server.Client(), FirebaseConfig{DatabaseURL: server.URL, Path: "data", AuthToken: "secret"}, nil)
	events, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "A", events[0].EventName)
	assert.Equal(t, "원곡,리믹스", events[0].Genre)
	assert.True(t, events[0].Confirm)

	assert.Equal(t, "1", events[1].ID)
	assert.True(t, events[1].Confirm)

	assert.Equal(t, "2", events[2].ID)
	assert.False(t, events[2].Confirm)

	assert.Equal(t, "x9", events[3].ID)
	assert.False(t, events[3].Confirm)
}

func TestFirebaseFetchAllStatusError(t *testing.T) {
	server := newFirebaseServer(t, `{"error": "Permission denied"}`, http.StatusUnauthorized)
	defer server.Close()

	repo := NewFirebaseEventRepository(server.Client(), FirebaseConfig{DatabaseURL: server.URL, Path: "data", AuthToken: "secret"}, nil)
	_, err := repo.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
