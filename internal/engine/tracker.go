package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"warehouse-sync/internal/dialect"
)

// StateTable is the tracking table in the operational store: one row per
// replicated table, unique on table_name.
const StateTable = "warehouse_sync_state"

// TimeFormat is the canonical timestamp representation handed to the
// warehouse, matching what the analytics queries downstream expect.
const TimeFormat = "2006-01-02 15:04:05"

// TableState is the persisted cursor for one table. LastSyncedRowID is the
// exclusive lower bound for the next extraction and the single source of
// truth for what has been replicated; LastSyncTimestamp is informational.
type TableState struct {
	TableName         string
	LastSyncTimestamp time.Time
	LastSyncedRowID   int64
}

// Tracker reads and writes per-table sync state in the operational store.
// Each state row has a single writer path (the orchestrator) and rows for
// different tables are independent, so no locking beyond the store's own
// single-row update semantics is needed.
type Tracker struct {
	db  *sql.DB
	d   dialect.Dialect
	log zerolog.Logger
}

func NewTracker(db *sql.DB, d dialect.Dialect, log zerolog.Logger) *Tracker {
	return &Tracker{db: db, d: d, log: log.With().Str("component", "tracker").Logger()}
}

// EnsureInitialized creates the tracking table if needed and seeds a state
// row per table name at watermark 0 and the epoch timestamp. Idempotent;
// called on every run before any table-level work.
func (t *Tracker) EnsureInitialized(ctx context.Context, tableNames []string) error {
	if _, err := t.db.ExecContext(ctx, t.d.CreateStateTableQuery(StateTable)); err != nil {
		return fmt.Errorf("failed to create %s: %w", StateTable, err)
	}

	epoch := time.Unix(0, 0).UTC()
	now := time.Now().UTC()
	query := t.d.InsertStateIfAbsentQuery(StateTable)
	for _, name := range tableNames {
		if _, err := t.db.ExecContext(ctx, query, name, epoch, int64(0), now, now); err != nil {
			return fmt.Errorf("failed to seed sync state for %s: %w", name, err)
		}
	}
	return nil
}

// GetState returns the current cursor for a table. A missing row yields the
// zero state rather than an error, so a registered table is always readable
// after EnsureInitialized.
func (t *Tracker) GetState(ctx context.Context, tableName string) (TableState, error) {
	state := TableState{TableName: tableName, LastSyncTimestamp: time.Unix(0, 0).UTC()}

	var ts sql.NullTime
	var rowID int64
	err := t.db.QueryRowContext(ctx, t.d.SelectStateQuery(StateTable), tableName).Scan(&ts, &rowID)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read sync state for %s: %w", tableName, err)
	}
	if ts.Valid {
		state.LastSyncTimestamp = ts.Time
	}
	state.LastSyncedRowID = rowID
	return state, nil
}

// Advance moves the watermark forward after a durably successful load. The
// watermark is max(id) over the loaded batch; ids in scope are monotonically
// increasing and the source soft-deletes, so id reuse does not occur.
func (t *Tracker) Advance(ctx context.Context, tableName string, newRowID int64, now time.Time) error {
	res, err := t.db.ExecContext(ctx, t.d.UpdateStateQuery(StateTable), now.UTC(), newRowID, now.UTC(), tableName)
	if err != nil {
		return fmt.Errorf("failed to advance watermark for %s: %w", tableName, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no sync state row for %s", tableName)
	}
	t.log.Debug().Str("table", tableName).Int64("watermark", newRowID).Msg("watermark advanced")
	return nil
}
