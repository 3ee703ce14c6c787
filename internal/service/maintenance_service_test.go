package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWarmer struct {
	mu    sync.Mutex
	years [][]int
}

func (w *recordingWarmer) Prefetch(_ context.Context, years ...int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.years = append(w.years, years)
}

func (w *recordingWarmer) calls() [][]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]int(nil), w.years...)
}

type recordingJanitor struct {
	mu    sync.Mutex
	runs  int
	err   error
	files []string
}

func (j *recordingJanitor) Cleanup(time.Duration) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return j.files, j.err
}

func (j *recordingJanitor) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

type recordingPruner struct {
	mu   sync.Mutex
	keep []int
}

func (p *recordingPruner) PruneArchive(_ context.Context, keep int) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keep = append(p.keep, keep)
	return 3, nil
}

func (p *recordingPruner) calls() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.keep...)
}

func TestMaintenanceServiceRejectsInvalidSchedule(t *testing.T) {
	_, err := NewMaintenanceService(&recordingWarmer{}, nil, nil, MaintenanceConfig{PrefetchCron: "every day"}, nil)
	assert.Error(t, err)

	_, err = NewMaintenanceService(nil, &recordingJanitor{}, nil, MaintenanceConfig{CleanupCron: "61 * * * *"}, nil)
	assert.Error(t, err)
}

func TestMaintenanceServicePrefetchDefaultsToCurrentAndNextYear(t *testing.T) {
	warmer := &recordingWarmer{}
	svc, err := NewMaintenanceService(warmer, nil, nil, MaintenanceConfig{Location: seoul}, nil)
	require.NoError(t, err)
	svc.WithClock(func() time.Time { return time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	require.NoError(t, svc.EnqueuePrefetch())
	require.Eventually(t, func() bool { return len(warmer.calls()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{2026, 2027}, warmer.calls()[0])
}

func TestMaintenanceServiceExplicitYears(t *testing.T) {
	warmer := &recordingWarmer{}
	svc, err := NewMaintenanceService(warmer, nil, nil, MaintenanceConfig{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	require.NoError(t, svc.EnqueuePrefetch(2024))
	require.Eventually(t, func() bool { return len(warmer.calls()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{2024}, warmer.calls()[0])
}

func TestMaintenanceServiceCleanup(t *testing.T) {
	janitor := &recordingJanitor{files: []string{"a.pdf"}}
	pruner := &recordingPruner{}
	svc, err := NewMaintenanceService(nil, janitor, pruner, MaintenanceConfig{SnapshotRetention: 7}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	require.NoError(t, svc.EnqueueCleanup())
	require.Eventually(t, func() bool { return len(pruner.calls()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, janitor.count())
	assert.Equal(t, []int{7}, pruner.calls())
}

func TestMaintenanceServiceCleanupStopsOnReceiptError(t *testing.T) {
	janitor := &recordingJanitor{err: errors.New("disk gone")}
	pruner := &recordingPruner{}
	svc, err := NewMaintenanceService(nil, janitor, pruner, MaintenanceConfig{}, nil)
	require.NoError(t, err)

	err = svc.cleanup(context.Background())
	assert.ErrorContains(t, err, "disk gone")
	assert.Empty(t, pruner.calls())
}

func TestMaintenanceServiceEnqueueBeforeStart(t *testing.T) {
	svc, err := NewMaintenanceService(&recordingWarmer{}, nil, nil, MaintenanceConfig{}, nil)
	require.NoError(t, err)
	assert.Error(t, svc.EnqueuePrefetch())
}
