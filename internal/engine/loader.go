package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/schema"
)

// Loader writes extracted batches into the warehouse. Insert-only tables are
// appended directly; mutable tables go through a per-batch staging table and
// a merge keyed on id, so re-delivered rows converge instead of duplicating.
type Loader struct {
	db         *sql.DB
	d          dialect.Dialect
	schemaName string
	log        zerolog.Logger
}

func NewLoader(db *sql.DB, d dialect.Dialect, schemaName string, log zerolog.Logger) *Loader {
	return &Loader{db: db, d: d, schemaName: schemaName, log: log.With().Str("component", "loader").Logger()}
}

// Load writes the batch using the table's declared strategy and returns only
// after the rows are durable in the warehouse. The caller advances the
// watermark afterwards; a crash between the two replays the batch.
func (l *Loader) Load(ctx context.Context, t schema.Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if t.Classification == schema.Mutable {
		return l.upsert(ctx, t, rows)
	}
	return l.append(ctx, t, rows)
}

// append inserts straight into the destination. Fail-fast: the transaction
// rolls back on the first bad row and the watermark stays put.
func (l *Loader) append(ctx context.Context, t schema.Table, rows []Row) error {
	dest := l.d.QualifyTable(l.schemaName, t.Name)
	if err := l.insertAll(ctx, dest, t, rows); err != nil {
		return err
	}
	l.log.Debug().Str("table", t.Name).Int("rows", len(rows)).Msg("appended batch")
	return nil
}

// upsert stages the batch in a throwaway table and merges it into the
// destination keyed on id. The staging name carries a timestamp and a random
// suffix so concurrent passes never collide.
func (l *Loader) upsert(ctx context.Context, t schema.Table, rows []Row) error {
	stagingName := fmt.Sprintf("%s_stage_%s_%s",
		t.Name, time.Now().UTC().Format("20060102150405"), uuid.NewString()[:8])
	staging := l.d.QualifyTable(l.schemaName, stagingName)

	stagingSchema := t
	stagingSchema.Classification = schema.InsertOnly // staging carries no key
	if _, err := l.db.ExecContext(ctx, l.d.CreateTableQuery(staging, stagingSchema)); err != nil {
		return fmt.Errorf("failed to create staging table %s: %w", staging, err)
	}
	defer func() {
		// Best effort: an orphaned staging table costs storage, not
		// correctness, and the next pass is unaffected.
		if _, err := l.db.Exec(l.d.DropTableQuery(staging)); err != nil {
			l.log.Warn().Err(err).Str("staging", staging).Msg("failed to drop staging table")
		}
	}()

	if err := l.insertAll(ctx, staging, t, rows); err != nil {
		return err
	}
	if _, err := l.db.ExecContext(ctx, l.d.MergeQuery(l.d.QualifyTable(l.schemaName, t.Name), staging, t)); err != nil {
		return fmt.Errorf("failed to merge %s into %s: %w", staging, t.Name, err)
	}
	l.log.Debug().Str("table", t.Name).Int("rows", len(rows)).Msg("merged batch")
	return nil
}

func (l *Loader) insertAll(ctx context.Context, qualified string, t schema.Table, rows []Row) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction for %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, l.d.InsertQuery(qualified, t.Columns()))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", qualified, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Values...); err != nil {
			return fmt.Errorf("failed to insert row id=%d into %s: %w", row.ID, qualified, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load into %s: %w", qualified, err)
	}
	return nil
}
