package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) Placeholder(index int) string { return "?" }

func (d *MysqlDialect) QualifyTable(schemaName, table string) string {
	return qualify(schemaName, table)
}

func (d *MysqlDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *MysqlDialect) CreateStateTableQuery(stateTable string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		table_name VARCHAR(255) NOT NULL UNIQUE,
		last_sync_timestamp DATETIME NOT NULL,
		last_synced_row_id BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`, stateTable)
}

func (d *MysqlDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", stateTable)
}

func (d *MysqlDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = ?", stateTable)
}

func (d *MysqlDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = ?, last_synced_row_id = ?, updated_at = ? WHERE table_name = ?", stateTable)
}

func (d *MysqlDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	// Falls back to the connection's current database when no schema is set.
	return "SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?", []any{schemaName, table}
}

func (d *MysqlDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *MysqlDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *MysqlDialect) MergeQuery(dest, staging string, t schema.Table) string {
	// MySQL has no MERGE; ON DUPLICATE KEY UPDATE keyed on the id primary
	// key gives the same matched/unmatched split.
	cols := t.Columns()
	var sets []string
	for _, c := range t.MergeColumns() {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON DUPLICATE KEY UPDATE %s",
		dest, joinCols(cols), joinCols(cols), staging, joinCols(sets))
}

func (d *MysqlDialect) DropTableQuery(qualified string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualified)
}

func (d *MysqlDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeFloat:
		return "DOUBLE"
	case schema.TypeTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
