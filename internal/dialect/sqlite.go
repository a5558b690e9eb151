package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

// SQLiteDialect covers the operational store of the original deployment. It
// also works as a self-contained warehouse for local trials and tests, using
// the upsert form of INSERT for the merge step.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite3" }

func (d *SQLiteDialect) Placeholder(index int) string { return "?" }

func (d *SQLiteDialect) QualifyTable(schemaName, table string) string {
	// SQLite has a single unnamed schema per file.
	return table
}

func (d *SQLiteDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *SQLiteDialect) CreateStateTableQuery(stateTable string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL UNIQUE,
		last_sync_timestamp TIMESTAMP NOT NULL,
		last_synced_row_id INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, stateTable)
}

func (d *SQLiteDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", stateTable)
}

func (d *SQLiteDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = ?", stateTable)
}

func (d *SQLiteDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = ?, last_synced_row_id = ?, updated_at = ? WHERE table_name = ?", stateTable)
}

func (d *SQLiteDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", []any{table}
}

func (d *SQLiteDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *SQLiteDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *SQLiteDialect) MergeQuery(dest, staging string, t schema.Table) string {
	// SQLite has no MERGE; the upsert form keyed on the id primary key has
	// the same matched-update / unmatched-insert semantics.
	cols := t.Columns()
	var sets []string
	for _, c := range t.MergeColumns() {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s WHERE true ON CONFLICT(id) DO UPDATE SET %s",
		dest, joinCols(cols), joinCols(cols), staging, joinCols(sets))
}

func (d *SQLiteDialect) DropTableQuery(qualified string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualified)
}

func (d *SQLiteDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeFloat:
		return "REAL"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
