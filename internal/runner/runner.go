package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"warehouse-sync/internal/engine"
)

// Syncer is the part of the orchestrator the runner drives.
type Syncer interface {
	RunAll(ctx context.Context) (engine.Summary, error)
	RunTables(ctx context.Context, names []string) (engine.Summary, error)
	TableNames() []string
}

// JobInfo describes one scheduled job for the status endpoint.
type JobInfo struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	Trigger string    `json:"trigger"`
}

// Runner owns the recurring schedule and the manual triggers. At most one
// pass runs at a time: a trigger that lands while a pass is in flight is
// dropped with a log line, since the running pass will pick up the same rows.
type Runner struct {
	syncer   Syncer
	interval time.Duration
	dailyAt  string // "HH:MM", empty disables the daily job
	log      zerolog.Logger

	running atomic.Bool
	lastRun atomic.Int64 // unix seconds of the last completed pass
}

func New(syncer Syncer, interval time.Duration, dailyAt string, log zerolog.Logger) *Runner {
	return &Runner{
		syncer:   syncer,
		interval: interval,
		dailyAt:  dailyAt,
		log:      log.With().Str("component", "runner").Logger(),
	}
}

// Running reports whether a pass is currently in flight.
func (r *Runner) Running() bool { return r.running.Load() }

// TableNames lists the replicated tables, in registration order.
func (r *Runner) TableNames() []string { return r.syncer.TableNames() }

// LastRun returns the completion time of the most recent pass, or the zero
// time if none has finished yet.
func (r *Runner) LastRun() time.Time {
	sec := r.lastRun.Load()
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// TriggerFull starts a full pass in the background. Returns false if a pass
// is already running.
func (r *Runner) TriggerFull(ctx context.Context) bool {
	return r.start(ctx, "manual_full", nil)
}

// TriggerTables starts a pass over the named tables in the background.
// Returns false if a pass is already running.
func (r *Runner) TriggerTables(ctx context.Context, names []string) bool {
	return r.start(ctx, "manual_tables", names)
}

func (r *Runner) start(ctx context.Context, reason string, names []string) bool {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn().Str("reason", reason).Msg("sync already running, trigger dropped")
		return false
	}
	go func() {
		defer r.running.Store(false)
		r.pass(ctx, reason, names)
	}()
	return true
}

// Start blocks, running the interval job and the daily job until the context
// is cancelled. The scheduled jobs go through the same single-flight gate as
// the manual triggers.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	daily := make(<-chan time.Time)
	var dailyTimer *time.Timer
	if r.dailyAt != "" {
		dailyTimer = time.NewTimer(time.Until(nextDaily(time.Now(), r.dailyAt)))
		defer dailyTimer.Stop()
		daily = dailyTimer.C
	}

	r.log.Info().Dur("interval", r.interval).Str("daily_at", r.dailyAt).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			r.runScheduled(ctx, "interval")
		case <-daily:
			r.runScheduled(ctx, "daily")
			dailyTimer.Reset(time.Until(nextDaily(time.Now(), r.dailyAt)))
		}
	}
}

// runScheduled runs a pass inline on the scheduler goroutine. Ticker sends
// that arrive during a long pass coalesce into one pending tick.
func (r *Runner) runScheduled(ctx context.Context, reason string) {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn().Str("reason", reason).Msg("sync already running, scheduled pass skipped")
		return
	}
	defer r.running.Store(false)
	r.pass(ctx, reason, nil)
}

func (r *Runner) pass(ctx context.Context, reason string, names []string) {
	r.log.Info().Str("reason", reason).Msg("sync pass starting")
	var err error
	if names == nil {
		_, err = r.syncer.RunAll(ctx)
	} else {
		_, err = r.syncer.RunTables(ctx, names)
	}
	if err != nil {
		r.log.Error().Err(err).Str("reason", reason).Msg("sync pass failed")
		return
	}
	r.lastRun.Store(time.Now().Unix())
}

// Jobs describes the schedule for the status endpoint.
func (r *Runner) Jobs() []JobInfo {
	now := time.Now()
	jobs := []JobInfo{{
		ID:      "interval_sync",
		Name:    "incremental sync",
		NextRun: now.Add(r.interval).UTC(),
		Trigger: fmt.Sprintf("every %s", r.interval),
	}}
	if r.dailyAt != "" {
		jobs = append(jobs, JobInfo{
			ID:      "daily_sync",
			Name:    "daily full sweep",
			NextRun: nextDaily(now, r.dailyAt).UTC(),
			Trigger: fmt.Sprintf("daily at %s", r.dailyAt),
		})
	}
	return jobs
}

// nextDaily returns the next occurrence of the "HH:MM" wall clock time after
// now, in now's location. A malformed time string degrades to midnight.
func nextDaily(now time.Time, at string) time.Time {
	t, err := time.Parse("15:04", at)
	if err != nil {
		t = time.Time{}
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
