package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
)

const maxFeedBody = 32 << 20

// FirebaseConfig addresses the realtime database node holding events.
type FirebaseConfig struct {
	DatabaseURL    string
	Path           string
	AuthToken      string
	RequestTimeout time.Duration
}

// FirebaseEventRepository reads the event node through the realtime database REST API.
type FirebaseEventRepository struct {
	client *http.Client
	cfg    FirebaseConfig
	logger *zap.Logger
}

// NewFirebaseEventRepository constructs the reader. A nil httpClient uses http.DefaultClient.
func NewFirebaseEventRepository(httpClient *http.Client, cfg FirebaseConfig, logger *zap.Logger) *FirebaseEventRepository {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirebaseEventRepository{client: httpClient, cfg: cfg, logger: logger}
}

// FetchAll downloads every event under the configured node. Child keys become
// event ids unless the record carries its own id.
func (r *FirebaseEventRepository) FetchAll(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.nodeURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build firebase request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read firebase response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firebase status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return r.decode(body)
}

func (r *FirebaseEventRepository) nodeURL() string {
	u := r.cfg.DatabaseURL + "/" + r.cfg.Path + ".json"
	if r.cfg.AuthToken != "" {
		u += "?" + url.Values{"auth": {r.cfg.AuthToken}}.Encode()
	}
	return u
}

func (r *FirebaseEventRepository) decode(body []byte) ([]models.Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []models.Event{}, nil
	}

	children := make(map[string]json.RawMessage)
	if body[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode firebase list: %w", err)
		}
		for i, raw := range list {
			children[strconv.Itoa(i)] = raw
		}
	} else if err := json.Unmarshal(body, &children); err != nil {
		return nil, fmt.Errorf("decode firebase object: %w", err)
	}

	keys := make([]string, 0, len(children))
	for key := range children {
		keys = append(keys, key)
	}
	SortChildKeys(keys)

	events := make([]models.Event, 0, len(keys))
	for _, key := range keys {
		raw := bytes.TrimSpace(children[key])
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var record firebaseRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			r.logger.Warn("skipping malformed event record", zap.String("key", key), zap.Error(err))
			continue
		}
		event := record.Event
		event.ID = scalarString(record.ID)
		if event.ID == "" {
			event.ID = key
		}
		event.Confirm = scalarBool(record.Confirm)
		events = append(events, event)
	}
	return events, nil
}

// firebaseRecord shadows the fields the upstream store writes loosely: id may
// be a number and confirm may be a quoted boolean.
type firebaseRecord struct {
	models.Event
	ID      json.RawMessage `json:"id"`
	Confirm json.RawMessage `json:"confirm"`
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

func scalarBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		b, _ = strconv.ParseBool(strings.TrimSpace(s))
	}
	return b
}

// SortChildKeys orders keys the way the realtime database does: integer keys
// numerically first, then the rest lexicographically.
func SortChildKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.ParseInt(keys[i], 10, 32)
		b, bErr := strconv.ParseInt(keys[j], 10, 32)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
