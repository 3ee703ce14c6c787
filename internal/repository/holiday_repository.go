package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

// Substrings the public data portal embeds in otherwise successful responses.
var holidayErrorMarkers = []string{
	"SERVICE_KEY_IS_NOT_REGISTERED_ERROR",
	"SERVICE ERROR",
	"LIMITED_NUMBER_OF_SERVICE_REQUESTS",
	"<returnAuthMsg>",
}

const maxHolidayBody = 1 << 20

// HolidayClientConfig configures the holiday API client.
type HolidayClientConfig struct {
	BaseURL        string
	APIKey         string
	Operation      string
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
}

// HolidayRepository fetches one month of public holidays per call.
type HolidayRepository struct {
	client *http.Client
	cfg    HolidayClientConfig
	logger *zap.Logger
}

// NewHolidayRepository constructs the client. A nil httpClient uses http.DefaultClient.
func NewHolidayRepository(httpClient *http.Client, cfg HolidayClientConfig, logger *zap.Logger) *HolidayRepository {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}
	if cfg.Operation == "" {
		cfg.Operation = "getHoliDeInfo"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayRepository{client: httpClient, cfg: cfg, logger: logger}
}

// FetchMonth returns the holidays of the given month keyed by MMDD. Each
// attempt is bounded by the request timeout; failed attempts are retried after
// a fixed delay until MaxAttempts is reached.
func (r *HolidayRepository) FetchMonth(ctx context.Context, year int, month time.Month) (models.HolidayMap, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		holidays, err := r.fetchOnce(ctx, year, month)
		if err == nil {
			return holidays, nil
		}
		lastErr = err
		r.logger.Warn("holiday fetch attempt failed",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == r.cfg.MaxAttempts {
			break
		}
		if err := sleepContext(ctx, r.cfg.RetryDelay); err != nil {
			return nil, err
		}
	}
	return nil, appErrors.Wrap(lastErr, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
		fmt.Sprintf("fetch holidays %04d-%02d", year, int(month)))
}

func (r *HolidayRepository) fetchOnce(ctx context.Context, year int, month time.Month) (models.HolidayMap, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL(year, month), nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/xml;q=0.9")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHolidayBody))
	if err != nil {
		return nil, fmt.Errorf("read holiday response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("holiday api status %d", resp.StatusCode)
	}
	if marker := findErrorMarker(body); marker != "" {
		return nil, fmt.Errorf("holiday api error marker %q", marker)
	}
	return ParseHolidayResponse(body)
}

func (r *HolidayRepository) requestURL(year int, month time.Month) string {
	params := url.Values{}
	params.Set("solYear", strconv.Itoa(year))
	params.Set("solMonth", fmt.Sprintf("%02d", int(month)))
	params.Set("numOfRows", "100")
	params.Set("_type", "json")
	query := params.Encode()
	// The portal expects the key exactly as issued, already URL-encoded.
	if r.cfg.APIKey != "" {
		query = "serviceKey=" + r.cfg.APIKey + "&" + query
	}
	return strings.TrimRight(r.cfg.BaseURL, "/") + "/" + r.cfg.Operation + "?" + query
}

func findErrorMarker(body []byte) string {
	for _, marker := range holidayErrorMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return marker
		}
	}
	return ""
}

type holidayItem struct {
	DateName string
	Locdate  string
}

// ParseHolidayResponse decodes a JSON or XML holiday listing into MMDD keys.
func ParseHolidayResponse(body []byte) (models.HolidayMap, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty holiday response")
	}

	var (
		code  string
		items []holidayItem
		err   error
	)
	if trimmed[0] == '<' {
		code, items, err = parseHolidayXML(trimmed)
	} else {
		code, items, err = parseHolidayJSON(trimmed)
	}
	if err != nil {
		return nil, err
	}
	if code != "" && code != "00" {
		return nil, fmt.Errorf("holiday api result code %s", code)
	}

	holidays := make(models.HolidayMap)
	for _, item := range items {
		locdate := strings.TrimSpace(item.Locdate)
		if len(locdate) != 8 || strings.TrimSpace(item.DateName) == "" {
			continue
		}
		key := locdate[4:8]
		holidays[key] = append(holidays[key], strings.TrimSpace(item.DateName))
	}
	return holidays, nil
}

type holidayJSONEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
		} `json:"header"`
		Body struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type holidayJSONItem struct {
	DateName string          `json:"dateName"`
	Locdate  json.RawMessage `json:"locdate"`
}

func parseHolidayJSON(body []byte) (string, []holidayItem, error) {
	var envelope holidayJSONEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", nil, fmt.Errorf("decode holiday json: %w", err)
	}
	code := envelope.Response.Header.ResultCode

	// items is "" when the month has no holidays, otherwise {"item": obj|[obj]}.
	raw := bytes.TrimSpace(envelope.Response.Body.Items)
	if len(raw) == 0 || raw[0] != '{' {
		return code, nil, nil
	}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return "", nil, fmt.Errorf("decode holiday items: %w", err)
	}

	var entries []holidayJSONItem
	item := bytes.TrimSpace(wrapper.Item)
	switch {
	case len(item) == 0:
	case item[0] == '[':
		if err := json.Unmarshal(item, &entries); err != nil {
			return "", nil, fmt.Errorf("decode holiday item list: %w", err)
		}
	default:
		var single holidayJSONItem
		if err := json.Unmarshal(item, &single); err != nil {
			return "", nil, fmt.Errorf("decode holiday item: %w", err)
		}
		entries = append(entries, single)
	}

	out := make([]holidayItem, 0, len(entries))
	for _, entry := range entries {
		out = append(out, holidayItem{
			DateName: entry.DateName,
			Locdate:  strings.Trim(string(entry.Locdate), `"`),
		})
	}
	return code, out, nil
}

type holidayXMLEnvelope struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
	} `xml:"header"`
	Items []struct {
		DateName string `xml:"dateName"`
		Locdate  string `xml:"locdate"`
	} `xml:"body>items>item"`
}

func parseHolidayXML(body []byte) (string, []holidayItem, error) {
	var envelope holidayXMLEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return "", nil, fmt.Errorf("decode holiday xml: %w", err)
	}
	out := make([]holidayItem, 0, len(envelope.Items))
	for _, entry := range envelope.Items {
		out = append(out, holidayItem{DateName: entry.DateName, Locdate: entry.Locdate})
	}
	return envelope.Header.ResultCode, out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
