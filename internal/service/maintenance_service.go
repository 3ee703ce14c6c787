package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/pkg/jobs"
)

// Maintenance job types.
const (
	JobHolidayPrefetch = "holiday_prefetch"
	JobStorageCleanup  = "storage_cleanup"
)

type holidayWarmer interface {
	Prefetch(ctx context.Context, years ...int)
}

type receiptJanitor interface {
	Cleanup(ttl time.Duration) ([]string, error)
}

type snapshotPruner interface {
	PruneArchive(ctx context.Context, keep int) (int64, error)
}

// MaintenanceConfig configures the cron triggers and worker pool.
type MaintenanceConfig struct {
	Workers           int
	PrefetchCron      string
	CleanupCron       string
	SnapshotRetention int
	Location          *time.Location
}

type prefetchPayload struct {
	Years []int
}

// MaintenanceService runs cache warming and housekeeping on a schedule. Cron
// entries only enqueue; work happens on the job queue so manual triggers and
// scheduled ones collapse into a single run.
type MaintenanceService struct {
	holidays  holidayWarmer
	receipts  receiptJanitor
	snapshots snapshotPruner
	cfg       MaintenanceConfig
	queue     *jobs.Queue
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
}

// NewMaintenanceService validates the cron expressions and registers them.
// Empty expressions disable the corresponding trigger.
func NewMaintenanceService(holidays holidayWarmer, receipts receiptJanitor, snapshots snapshotPruner, cfg MaintenanceConfig, logger *zap.Logger) (*MaintenanceService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SnapshotRetention <= 0 {
		cfg.SnapshotRetention = 50
	}

	s := &MaintenanceService{
		holidays:  holidays,
		receipts:  receipts,
		snapshots: snapshots,
		cfg:       cfg,
		cron:      cron.New(cron.WithLocation(cfg.Location)),
		logger:    logger,
		now:       time.Now,
	}
	s.queue = jobs.NewQueue("maintenance", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: 1,
		RetryDelay: time.Minute,
		Logger:     logger,
	})

	if expr := strings.TrimSpace(cfg.PrefetchCron); expr != "" && holidays != nil {
		if _, err := s.cron.AddFunc(expr, func() { s.logEnqueue(s.EnqueuePrefetch()) }); err != nil {
			return nil, fmt.Errorf("holiday prefetch schedule %q: %w", expr, err)
		}
	}
	if expr := strings.TrimSpace(cfg.CleanupCron); expr != "" {
		if _, err := s.cron.AddFunc(expr, func() { s.logEnqueue(s.EnqueueCleanup()) }); err != nil {
			return nil, fmt.Errorf("cleanup schedule %q: %w", expr, err)
		}
	}

	return s, nil
}

// WithClock overrides the clock used to pick prefetch years. Intended for tests.
func (s *MaintenanceService) WithClock(now func() time.Time) *MaintenanceService {
	if now != nil {
		s.now = now
	}
	return s
}

// Start launches the workers and the scheduler.
func (s *MaintenanceService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop halts the scheduler, waits for running cron callbacks, then drains workers.
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

// EnqueuePrefetch schedules a holiday warm-up. Without years it warms the
// current and the next year.
func (s *MaintenanceService) EnqueuePrefetch(years ...int) error {
	if len(years) == 0 {
		current := s.now().In(s.cfg.Location).Year()
		years = []int{current, current + 1}
	}
	parts := make([]string, len(years))
	for i, year := range years {
		parts[i] = strconv.Itoa(year)
	}
	return s.queue.Enqueue(jobs.Job{
		ID:      JobHolidayPrefetch + ":" + strings.Join(parts, ","),
		Type:    JobHolidayPrefetch,
		Payload: prefetchPayload{Years: years},
	})
}

// EnqueueCleanup schedules removal of expired receipt files and old snapshots.
func (s *MaintenanceService) EnqueueCleanup() error {
	return s.queue.Enqueue(jobs.Job{ID: JobStorageCleanup, Type: JobStorageCleanup})
}

func (s *MaintenanceService) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobHolidayPrefetch:
		payload, ok := job.Payload.(prefetchPayload)
		if !ok || s.holidays == nil {
			return nil
		}
		s.holidays.Prefetch(ctx, payload.Years...)
		return nil
	case JobStorageCleanup:
		return s.cleanup(ctx)
	default:
		s.logger.Warn("unknown maintenance job", zap.String("type", job.Type))
		return nil
	}
}

func (s *MaintenanceService) cleanup(ctx context.Context) error {
	if s.receipts != nil {
		removed, err := s.receipts.Cleanup(0)
		if err != nil {
			return fmt.Errorf("receipt cleanup: %w", err)
		}
		s.logger.Info("receipt files removed", zap.Int("count", len(removed)))
	}
	if s.snapshots != nil {
		pruned, err := s.snapshots.PruneArchive(ctx, s.cfg.SnapshotRetention)
		if err != nil {
			return fmt.Errorf("snapshot prune: %w", err)
		}
		s.logger.Info("event snapshots pruned", zap.Int64("count", pruned))
	}
	return nil
}

func (s *MaintenanceService) logEnqueue(err error) {
	if err != nil && !errors.Is(err, jobs.ErrDuplicate) {
		s.logger.Warn("maintenance enqueue failed", zap.Error(err))
	}
}
