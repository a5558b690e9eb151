package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/schema"
)

// Provisioner creates destination tables in the warehouse on demand. It
// probes before creating rather than relying on IF NOT EXISTS so the same
// path works on every backend.
type Provisioner struct {
	db         *sql.DB
	d          dialect.Dialect
	schemaName string
	log        zerolog.Logger
}

func NewProvisioner(db *sql.DB, d dialect.Dialect, schemaName string, log zerolog.Logger) *Provisioner {
	return &Provisioner{db: db, d: d, schemaName: schemaName, log: log.With().Str("component", "provisioner").Logger()}
}

// Qualified returns the destination name of a table in the configured schema.
func (p *Provisioner) Qualified(table string) string {
	return p.d.QualifyTable(p.schemaName, table)
}

// EnsureTable creates the destination table if it does not exist. Existing
// tables are left untouched, including ones whose columns have drifted from
// the declared schema.
func (p *Provisioner) EnsureTable(ctx context.Context, t schema.Table) error {
	exists, err := p.exists(ctx, t.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	qualified := p.Qualified(t.Name)
	if _, err := p.db.ExecContext(ctx, p.d.CreateTableQuery(qualified, t)); err != nil {
		return fmt.Errorf("failed to create destination table %s: %w", qualified, err)
	}
	p.log.Info().Str("table", t.Name).Str("destination", qualified).Msg("created destination table")
	return nil
}

func (p *Provisioner) exists(ctx context.Context, table string) (bool, error) {
	query, args := p.d.TableExistsQuery(p.schemaName, table)
	var count int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to probe destination table %s: %w", table, err)
	}
	return count > 0, nil
}
