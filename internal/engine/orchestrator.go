package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"warehouse-sync/internal/schema"
)

// Result is the outcome of syncing one table during a pass.
type Result struct {
	Table     string
	Rows      int
	Watermark int64
	Duration  time.Duration
	Err       error
}

// Summary aggregates a pass. A pass with failed tables is still a completed
// pass: failures are isolated per table and surface here, not as an error.
type Summary struct {
	Succeeded []string
	Failed    []string
	Rows      int
	Duration  time.Duration
}

// Orchestrator drives a sync pass: for each table, read the cursor, extract
// everything past it, provision the destination if needed, load, then advance
// the cursor. Tables are independent, so they run on a bounded worker pool
// and one table's failure never stops the others.
type Orchestrator struct {
	registry    *schema.Registry
	tracker     *Tracker
	extractor   *Extractor
	provisioner *Provisioner
	loader      *Loader
	metrics     *Metrics
	workers     int
	passTimeout time.Duration
	log         zerolog.Logger

	// OnTableDone, when set, is called after each table finishes, success
	// or failure. Used by the CLI for progress reporting.
	OnTableDone func(Result)
}

type OrchestratorConfig struct {
	Workers     int
	PassTimeout time.Duration
}

func NewOrchestrator(registry *schema.Registry, tracker *Tracker, extractor *Extractor, provisioner *Provisioner, loader *Loader, metrics *Metrics, cfg OrchestratorConfig, log zerolog.Logger) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		registry:    registry,
		tracker:     tracker,
		extractor:   extractor,
		provisioner: provisioner,
		loader:      loader,
		metrics:     metrics,
		workers:     workers,
		passTimeout: cfg.PassTimeout,
		log:         log.With().Str("component", "orchestrator").Logger(),
	}
}

// TableNames lists every registered table in registration order.
func (o *Orchestrator) TableNames() []string {
	return o.registry.Names()
}

// RunAll syncs every registered table. The returned error is reserved for
// pass-level failures (state table initialization); per-table errors land in
// the summary.
func (o *Orchestrator) RunAll(ctx context.Context) (Summary, error) {
	return o.run(ctx, o.registry.Tables())
}

// RunTables syncs the named subset. Unknown names are logged and skipped so
// an ad-hoc trigger with a typo still syncs the valid remainder.
func (o *Orchestrator) RunTables(ctx context.Context, names []string) (Summary, error) {
	var tables []schema.Table
	for _, name := range names {
		t, err := o.registry.Schema(name)
		if err != nil {
			o.log.Warn().Str("table", name).Msg("unknown table requested, skipping")
			continue
		}
		tables = append(tables, t)
	}
	return o.run(ctx, tables)
}

func (o *Orchestrator) run(ctx context.Context, tables []schema.Table) (Summary, error) {
	start := time.Now()
	if o.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.passTimeout)
		defer cancel()
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	if err := o.tracker.EnsureInitialized(ctx, names); err != nil {
		return Summary{}, fmt.Errorf("failed to initialize sync state: %w", err)
	}

	var mu sync.Mutex
	summary := Summary{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, t := range tables {
		t := t
		g.Go(func() error {
			res := o.syncTable(ctx, t)
			if res.Err != nil {
				o.log.Error().Err(res.Err).Str("table", t.Name).Msg("table sync failed")
				o.metrics.ObserveFailure(t.Name)
			} else if res.Rows > 0 {
				o.log.Info().Str("table", t.Name).Int("rows", res.Rows).Int64("watermark", res.Watermark).Dur("took", res.Duration).Msg("table synced")
			}
			mu.Lock()
			if res.Err != nil {
				summary.Failed = append(summary.Failed, t.Name)
			} else {
				summary.Succeeded = append(summary.Succeeded, t.Name)
				summary.Rows += res.Rows
			}
			mu.Unlock()
			if o.OnTableDone != nil {
				o.OnTableDone(res)
			}
			// Failures are recorded, not propagated, so the remaining
			// tables keep running.
			return nil
		})
	}
	g.Wait()

	summary.Duration = time.Since(start)
	o.metrics.ObservePass(summary.Duration)
	o.log.Info().Int("succeeded", len(summary.Succeeded)).Int("failed", len(summary.Failed)).Int("rows", summary.Rows).Dur("took", summary.Duration).Msg("sync pass finished")
	return summary, nil
}

func (o *Orchestrator) syncTable(ctx context.Context, t schema.Table) Result {
	start := time.Now()
	res := Result{Table: t.Name}
	defer func() { res.Duration = time.Since(start) }()

	state, err := o.tracker.GetState(ctx, t.Name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Watermark = state.LastSyncedRowID

	if err := o.provisioner.EnsureTable(ctx, t); err != nil {
		res.Err = err
		return res
	}

	rows, err := o.extractor.ChangedRows(ctx, t, state.LastSyncedRowID)
	if err != nil {
		res.Err = err
		return res
	}
	if len(rows) == 0 {
		o.log.Debug().Str("table", t.Name).Msg("no changed rows")
		return res
	}

	if err := o.loader.Load(ctx, t, rows); err != nil {
		res.Err = err
		return res
	}

	// Rows come back ordered by id, so the watermark is the last one.
	newWatermark := rows[len(rows)-1].ID
	if err := o.tracker.Advance(ctx, t.Name, newWatermark, time.Now()); err != nil {
		res.Err = err
		return res
	}

	res.Rows = len(rows)
	res.Watermark = newWatermark
	o.metrics.ObserveRows(t.Name, len(rows))
	o.metrics.ObserveWatermark(t.Name, newWatermark)
	return res
}
