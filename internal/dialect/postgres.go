package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

// PostgresDialect serves both roles: operational source and warehouse
// destination (MERGE is available from PostgreSQL 15).
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) QualifyTable(schemaName, table string) string {
	return qualify(schemaName, table)
}

func (d *PostgresDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *PostgresDialect) CreateStateTableQuery(stateTable string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		table_name TEXT NOT NULL UNIQUE,
		last_sync_timestamp TIMESTAMP NOT NULL,
		last_synced_row_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, stateTable)
}

func (d *PostgresDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf("INSERT INTO %s (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (table_name) DO NOTHING", stateTable)
}

func (d *PostgresDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = $1", stateTable)
}

func (d *PostgresDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = $1, last_synced_row_id = $2, updated_at = $3 WHERE table_name = $4", stateTable)
}

func (d *PostgresDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	if schemaName == "" {
		schemaName = "public"
	}
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2", []any{schemaName, table}
}

func (d *PostgresDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *PostgresDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *PostgresDialect) MergeQuery(dest, staging string, t schema.Table) string {
	return buildAnsiMerge(dest, staging, t, mergeOptions{aliasKeyword: "AS ", bareSetTarget: true})
}

func (d *PostgresDialect) DropTableQuery(qualified string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualified)
}

func (d *PostgresDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
