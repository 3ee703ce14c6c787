package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

const holidayJSONMulti = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL SERVICE."},
"body":{"items":{"item":[
{"dateKind":"01","dateName":"삼일절","isHoliday":"Y","locdate":20250301,"seq":1},
{"dateKind":"01","dateName":"대체공휴일","isHoliday":"Y","locdate":20250303,"seq":1},
{"dateKind":"01","dateName":"임시공휴일","isHoliday":"Y","locdate":"20250303","seq":2}
]},"numOfRows":100,"pageNo":1,"totalCount":3}}}`

const holidayJSONSingle = `{"response":{"header":{"resultCode":"00"},
"body":{"items":{"item":{"dateName":"광복절","locdate":20250815}},"totalCount":1}}}`

const holidayJSONEmpty = `{"response":{"header":{"resultCode":"00"},"body":{"items":"","totalCount":0}}}`

const holidayXML = `<?xml version="1.0" encoding="UTF-8"?>
<response><header><resultCode>00</resultCode><resultMsg>NORMAL SERVICE.</resultMsg></header>
<body><items>
<item><dateKind>01</dateKind><dateName>크리스마스</dateName><isHoliday>Y</isHoliday><locdate>20251225</locdate></item>
</items><totalCount>1</totalCount></body></response>`

const holidayAuthError = `<OpenAPI_ServiceResponse><cmmMsgHeader><errMsg>SERVICE ERROR</errMsg>
<returnAuthMsg>SERVICE_KEY_IS_NOT_REGISTERED_ERROR</returnAuthMsg><returnReasonCode>30</returnReasonCode></cmmMsgHeader></OpenAPI_ServiceResponse>`

func TestParseHolidayResponseJSON(t *testing.T) {
	holidays, err := ParseHolidayResponse([]byte(holidayJSONMulti))
	require.NoError(t, err)
	assert.Equal(t, models.HolidayMap{
		"0301": {"삼일절"},
		"0303": {"대체공휴일", "임시공휴일"},
	}, holidays)

	holidays, err = ParseHolidayResponse([]byte(holidayJSONSingle))
	require.NoError(t, err)
	assert.Equal(t, []string{"광복절"}, holidays["0815"])

	holidays, err = ParseHolidayResponse([]byte(holidayJSONEmpty))
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func TestParseHolidayResponseXML(t *testing.T) {
	holidays, err := ParseHolidayResponse([]byte(holidayXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"크리스마스"}, holidays["1225"])
}

func TestParseHolidayResponseRejectsResultCode(t *testing.T) {
	_, err := ParseHolidayResponse([]byte(`{"response":{"header":{"resultCode":"99"}}}`))
	require.Error(t, err)
}

func TestHolidayRepositoryFetchMonth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getHoliDeInfo", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("solYear"))
		assert.Equal(t, "03", r.URL.Query().Get("solMonth"))
		assert.Equal(t, "key", r.URL.Query().Get("serviceKey"))
		_, _ = w.Write([]byte(holidayJSONMulti))
	}))
	defer server.Close()

	repo := NewHolidayRepository(server.Client(), HolidayClientConfig{
		BaseURL: server.URL,
		APIKey:  "key",
	}, zap.NewNop())

	holidays, err := repo.FetchMonth(context.Background(), 2025, time.March)
	require.NoError(t, err)
	assert.Len(t, holidays, 2)
}

func TestHolidayRepositoryRetriesErrorMarker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(holidayAuthError))
			return
		}
		_, _ = w.Write([]byte(holidayJSONSingle))
	}))
	defer server.Close()

	repo := NewHolidayRepository(server.Client(), HolidayClientConfig{
		BaseURL:     server.URL,
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	}, zap.NewNop())

	holidays, err := repo.FetchMonth(context.Background(), 2025, time.August)
	require.NoError(t, err)
	assert.Equal(t, []string{"광복절"}, holidays["0815"])
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHolidayRepositoryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := NewHolidayRepository(server.Client(), HolidayClientConfig{
		BaseURL:     server.URL,
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	}, zap.NewNop())

	_, err := repo.FetchMonth(context.Background(), 2025, time.May)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHolidayRepositoryTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	repo := NewHolidayRepository(server.Client(), HolidayClientConfig{
		BaseURL:        server.URL,
		MaxAttempts:    1,
		RequestTimeout: 20 * time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	_, err := repo.FetchMonth(context.Background(), 2025, time.June)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
