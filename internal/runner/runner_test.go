package runner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-sync/internal/engine"
)

// blockingSyncer holds every pass open until released.
type blockingSyncer struct {
	started chan struct{}
	release chan struct{}
	full    atomic.Int32
	partial atomic.Int32
	names   []string
}

func newBlockingSyncer() *blockingSyncer {
	return &blockingSyncer{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (s *blockingSyncer) RunAll(ctx context.Context) (engine.Summary, error) {
	s.full.Add(1)
	s.started <- struct{}{}
	<-s.release
	return engine.Summary{}, nil
}

func (s *blockingSyncer) RunTables(ctx context.Context, names []string) (engine.Summary, error) {
	s.partial.Add(1)
	s.names = names
	s.started <- struct{}{}
	<-s.release
	return engine.Summary{}, nil
}

func (s *blockingSyncer) TableNames() []string { return []string{"accounts", "events"} }

func waitIdle(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.Running() {
		if time.Now().After(deadline) {
			t.Fatal("runner never went idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSingleFlight(t *testing.T) {
	s := newBlockingSyncer()
	r := New(s, time.Hour, "", zerolog.Nop())
	ctx := context.Background()

	require.True(t, r.TriggerFull(ctx))
	<-s.started
	assert.True(t, r.Running())

	// A second trigger while the pass is in flight is dropped.
	assert.False(t, r.TriggerFull(ctx))
	assert.False(t, r.TriggerTables(ctx, []string{"accounts"}))
	assert.Equal(t, int32(1), s.full.Load())

	close(s.release)
	waitIdle(t, r)

	// Idle again; the next trigger goes through.
	s.release = make(chan struct{})
	close(s.release)
	require.True(t, r.TriggerFull(ctx))
	<-s.started
	waitIdle(t, r)
	assert.Equal(t, int32(2), s.full.Load())
}

func TestTriggerTablesPassesNames(t *testing.T) {
	s := newBlockingSyncer()
	close(s.release)
	r := New(s, time.Hour, "", zerolog.Nop())

	require.True(t, r.TriggerTables(context.Background(), []string{"accounts", "events"}))
	<-s.started
	waitIdle(t, r)

	assert.Equal(t, int32(1), s.partial.Load())
	assert.Equal(t, []string{"accounts", "events"}, s.names)
}

func TestLastRunRecorded(t *testing.T) {
	s := newBlockingSyncer()
	close(s.release)
	r := New(s, time.Hour, "", zerolog.Nop())

	assert.True(t, r.LastRun().IsZero())
	require.True(t, r.TriggerFull(context.Background()))
	<-s.started
	waitIdle(t, r)
	assert.WithinDuration(t, time.Now(), r.LastRun(), 5*time.Second)
}

func TestJobs(t *testing.T) {
	s := newBlockingSyncer()
	r := New(s, 30*time.Minute, "23:55", zerolog.Nop())

	jobs := r.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "interval_sync", jobs[0].ID)
	assert.Equal(t, "every 30m0s", jobs[0].Trigger)
	assert.Equal(t, "daily_sync", jobs[1].ID)
	assert.Equal(t, "daily at 23:55", jobs[1].Trigger)
	assert.True(t, jobs[0].NextRun.After(time.Now().UTC().Add(29*time.Minute)))

	r = New(s, 30*time.Minute, "", zerolog.Nop())
	assert.Len(t, r.Jobs(), 1)
}

func TestNextDaily(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	next := nextDaily(now, "23:55")
	assert.Equal(t, time.Date(2026, 3, 10, 23, 55, 0, 0, time.UTC), next)

	// Already past today's slot: schedule tomorrow.
	next = nextDaily(now, "09:00")
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), next)

	// Exactly at the slot counts as past.
	next = nextDaily(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), "09:00")
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), next)
}

func TestSchedulerIntervalFires(t *testing.T) {
	s := newBlockingSyncer()
	close(s.release)
	r := New(s, 20*time.Millisecond, "", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	select {
	case <-s.started:
	case <-time.After(2 * time.Second):
		t.Fatal("interval job never fired")
	}
	cancel()
	<-done
	assert.GreaterOrEqual(t, s.full.Load(), int32(1))
}
