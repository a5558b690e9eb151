package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

// DuckDBDialect targets DuckDB 1.4+ as the analytical warehouse (MERGE INTO
// landed in 1.4).
type DuckDBDialect struct{}

func (d *DuckDBDialect) Name() string { return "duckdb" }

func (d *DuckDBDialect) Placeholder(index int) string { return "?" }

func (d *DuckDBDialect) QualifyTable(schemaName, table string) string {
	return qualify(schemaName, table)
}

func (d *DuckDBDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *DuckDBDialect) CreateStateTableQuery(stateTable string) string {
	// DuckDB has no AUTO_INCREMENT; the surrogate id comes from a sequence.
	return fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s_id_seq;
CREATE TABLE IF NOT EXISTS %s (
		id BIGINT DEFAULT nextval('%s_id_seq') PRIMARY KEY,
		table_name VARCHAR NOT NULL UNIQUE,
		last_sync_timestamp TIMESTAMP NOT NULL,
		last_synced_row_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, stateTable, stateTable, stateTable)
}

func (d *DuckDBDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", stateTable)
}

func (d *DuckDBDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = ?", stateTable)
}

func (d *DuckDBDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = ?, last_synced_row_id = ?, updated_at = ? WHERE table_name = ?", stateTable)
}

func (d *DuckDBDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = COALESCE(NULLIF(?, ''), 'main') AND table_name = ?", []any{schemaName, table}
}

func (d *DuckDBDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *DuckDBDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *DuckDBDialect) MergeQuery(dest, staging string, t schema.Table) string {
	return buildAnsiMerge(dest, staging, t, mergeOptions{aliasKeyword: "AS ", bareSetTarget: true})
}

func (d *DuckDBDialect) DropTableQuery(qualified string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualified)
}

func (d *DuckDBDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeFloat:
		return "DOUBLE"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}
