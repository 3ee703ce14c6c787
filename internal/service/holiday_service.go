package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/models"
)

// HolidayFetcher loads one month of holidays from the upstream API.
type HolidayFetcher interface {
	FetchMonth(ctx context.Context, year int, month time.Month) (models.HolidayMap, error)
}

type holidayCall struct {
	done   chan struct{}
	result models.HolidayMap
}

// HolidayService caches public holidays per year. Concurrent requests for a
// year that is not cached yet share a single fetch sequence. Returned maps are
// shared between callers and must be treated as read-only.
type HolidayService struct {
	fetcher   HolidayFetcher
	batchSize int
	loc       *time.Location
	metrics   *MetricsService
	logger    *zap.Logger

	mu         sync.Mutex
	years      map[int]models.HolidayMap
	inflight   map[int]*holidayCall
	generation uint64
}

// NewHolidayService constructs the cache. batchSize bounds concurrent month
// requests; batches run one after another.
func NewHolidayService(fetcher HolidayFetcher, batchSize int, loc *time.Location, metrics *MetricsService, logger *zap.Logger) *HolidayService {
	if batchSize <= 0 {
		batchSize = 3
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{
		fetcher:   fetcher,
		batchSize: batchSize,
		loc:       loc,
		metrics:   metrics,
		logger:    logger,
		years:     make(map[int]models.HolidayMap),
		inflight:  make(map[int]*holidayCall),
	}
}

// HolidaysForYear returns the MMDD keyed holidays of year. Upstream failures
// only shrink the result. If ctx ends before the shared fetch completes the
// caller gets an empty map while the fetch keeps running for other callers.
func (s *HolidayService) HolidaysForYear(ctx context.Context, year int) models.HolidayMap {
	s.mu.Lock()
	if holidays, ok := s.years[year]; ok {
		s.mu.Unlock()
		s.metrics.RecordHolidayLookup(true)
		return holidays
	}
	call, ok := s.inflight[year]
	if !ok {
		call = &holidayCall{done: make(chan struct{})}
		s.inflight[year] = call
		go s.load(context.WithoutCancel(ctx), year, call, s.generation)
	}
	s.mu.Unlock()
	s.metrics.RecordHolidayLookup(false)

	select {
	case <-call.done:
		return call.result
	case <-ctx.Done():
		return models.HolidayMap{}
	}
}

// HolidayForDate returns the holiday names on date, or nil when there are none.
func (s *HolidayService) HolidayForDate(ctx context.Context, date time.Time) []string {
	date = date.In(s.loc)
	holidays := s.HolidaysForYear(ctx, date.Year())
	names := holidays[MMDD(date)]
	if len(names) == 0 {
		return nil
	}
	return names
}

// Prefetch warms the cache for the given years.
func (s *HolidayService) Prefetch(ctx context.Context, years ...int) {
	for _, year := range years {
		holidays := s.HolidaysForYear(ctx, year)
		s.logger.Info("holiday year prefetched", zap.Int("year", year), zap.Int("days", len(holidays)))
	}
}

// ClearCache drops every cached year and forgets in-flight fetches. Fetches
// already running still answer their waiters but are not stored.
func (s *HolidayService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years = make(map[int]models.HolidayMap)
	s.inflight = make(map[int]*holidayCall)
	s.generation++
	s.logger.Info("holiday cache cleared")
}

// CachedYears lists the years currently cached, ascending.
func (s *HolidayService) CachedYears() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	years := make([]int, 0, len(s.years))
	for year := range s.years {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func (s *HolidayService) load(ctx context.Context, year int, call *holidayCall, generation uint64) {
	result := s.fetchYear(ctx, year)

	s.mu.Lock()
	if s.generation == generation {
		s.years[year] = result
		delete(s.inflight, year)
	}
	s.mu.Unlock()

	call.result = result
	close(call.done)
}

type monthHolidays struct {
	month    time.Month
	holidays models.HolidayMap
}

func (s *HolidayService) fetchYear(ctx context.Context, year int) models.HolidayMap {
	merged := make(models.HolidayMap)
	for first := 1; first <= 12; first += s.batchSize {
		last := first + s.batchSize - 1
		if last > 12 {
			last = 12
		}

		p := pool.NewWithResults[monthHolidays]().WithMaxGoroutines(s.batchSize)
		for m := first; m <= last; m++ {
			month := time.Month(m)
			p.Go(func() monthHolidays {
				holidays, err := s.fetcher.FetchMonth(ctx, year, month)
				if err != nil {
					s.metrics.RecordHolidayFetch(false)
					s.logger.Warn("holiday month unavailable", zap.Int("year", year), zap.Int("month", int(month)), zap.Error(err))
					return monthHolidays{month: month}
				}
				s.metrics.RecordHolidayFetch(true)
				return monthHolidays{month: month, holidays: holidays}
			})
		}

		results := p.Wait()
		sort.Slice(results, func(i, j int) bool { return results[i].month < results[j].month })
		for _, r := range results {
			merged.Merge(r.holidays)
		}
	}
	return merged
}

// MMDD formats the holiday key of a date.
func MMDD(date time.Time) string {
	return fmt.Sprintf("%02d%02d", int(date.Month()), date.Day())
}
