package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

// EventSource returns the full upstream event list.
type EventSource interface {
	FetchAll(ctx context.Context) ([]models.Event, error)
}

// EventArchive persists snapshots so a restart can serve data before upstream answers.
type EventArchive interface {
	Save(ctx context.Context, snapshot *models.EventSnapshot) error
	Latest(ctx context.Context) (*models.EventSnapshot, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// EventFeedService holds the latest event snapshot and pushes replacements to
// subscribers. Every refresh replaces the list wholesale.
type EventFeedService struct {
	source   EventSource
	archive  EventArchive
	interval time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	events    []models.Event
	hash      string
	loaded    bool
	updatedAt time.Time

	subsMu sync.Mutex
	subs   map[int]func([]models.Event)
	nextID int
}

// NewEventFeedService constructs the feed. archive may be nil.
func NewEventFeedService(source EventSource, archive EventArchive, interval time.Duration, metrics *MetricsService, logger *zap.Logger) *EventFeedService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventFeedService{
		source:   source,
		archive:  archive,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		events:   []models.Event{},
		subs:     make(map[int]func([]models.Event)),
	}
}

// Snapshot returns the current event list. The slice is shared and must not be modified.
func (s *EventFeedService) Snapshot() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

// Loaded reports whether any snapshot has been received.
func (s *EventFeedService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// UpdatedAt returns when the current snapshot was installed.
func (s *EventFeedService) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Subscribe registers fn for every new snapshot. fn is called immediately with
// the current one when the feed is loaded. The returned func unsubscribes.
func (s *EventFeedService) Subscribe(fn func([]models.Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	s.mu.RLock()
	events, loaded := s.events, s.loaded
	s.mu.RUnlock()
	if loaded {
		fn(events)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Refresh fetches upstream and installs the result. On failure the previous
// snapshot stays in place.
func (s *EventFeedService) Refresh(ctx context.Context) error {
	events, err := s.source.FetchAll(ctx)
	if err != nil {
		s.metrics.RecordFeedRefresh(false, 0)
		s.logger.Warn("event feed refresh failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "event feed refresh failed")
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal event snapshot: %w", err)
	}
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	changed := s.install(events, hash)
	s.metrics.RecordFeedRefresh(true, len(events))
	if !changed {
		return nil
	}
	s.logger.Info("event feed updated", zap.Int("events", len(events)))

	if s.archive != nil {
		snapshot := &models.EventSnapshot{
			TakenAt:     s.now().UTC(),
			EventCount:  len(events),
			ContentHash: hash,
			Payload:     payload,
		}
		if err := s.archive.Save(ctx, snapshot); err != nil {
			s.logger.Warn("event snapshot archive failed", zap.Error(err))
		}
	}
	return nil
}

// Seed installs the newest archived snapshot when nothing is loaded yet.
func (s *EventFeedService) Seed(ctx context.Context) error {
	if s.archive == nil || s.Loaded() {
		return nil
	}
	snapshot, err := s.archive.Latest(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	var events []models.Event
	if err := json.Unmarshal(snapshot.Payload, &events); err != nil {
		return fmt.Errorf("decode archived snapshot %s: %w", snapshot.ID, err)
	}
	if events == nil {
		events = []models.Event{}
	}

	s.mu.Lock()
	seeded := !s.loaded
	if seeded {
		s.events, s.hash, s.loaded, s.updatedAt = events, snapshot.ContentHash, true, snapshot.TakenAt
	}
	s.mu.Unlock()
	if seeded {
		s.logger.Info("event feed seeded from archive", zap.String("snapshot_id", snapshot.ID), zap.Int("events", len(events)))
		s.notify(events)
	}
	return nil
}

// Run seeds from the archive, then polls upstream until ctx ends.
func (s *EventFeedService) Run(ctx context.Context) {
	if err := s.Seed(ctx); err != nil {
		s.logger.Warn("event feed seed failed", zap.Error(err))
	}
	_ = s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// PruneArchive keeps the newest keep snapshots.
func (s *EventFeedService) PruneArchive(ctx context.Context, keep int) (int64, error) {
	if s.archive == nil {
		return 0, nil
	}
	return s.archive.Prune(ctx, keep)
}

func (s *EventFeedService) install(events []models.Event, hash string) bool {
	s.mu.Lock()
	changed := !s.loaded || hash != s.hash
	s.events, s.hash, s.loaded, s.updatedAt = events, hash, true, s.now()
	s.mu.Unlock()

	if changed {
		s.notify(events)
	}
	return changed
}

func (s *EventFeedService) notify(events []models.Event) {
	s.subsMu.Lock()
	subs := make([]func([]models.Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(events)
	}
}
