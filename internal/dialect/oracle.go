package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

// OracleDialect is a warehouse destination with native MERGE. Oracle has no
// CREATE TABLE IF NOT EXISTS, so the idempotent DDL statements swallow the
// already-exists / does-not-exist error codes in a PL/SQL block.
type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Placeholder(index int) string {
	// 1-based bind positions.
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) QualifyTable(schemaName, table string) string {
	// Current-user namespace; the configured schema is the connected user.
	return table
}

func (d *OracleDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *OracleDialect) CreateStateTableQuery(stateTable string) string {
	ddl := fmt.Sprintf(`CREATE TABLE %s (
		id NUMBER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		table_name VARCHAR2(255) NOT NULL UNIQUE,
		last_sync_timestamp TIMESTAMP NOT NULL,
		last_synced_row_id NUMBER(19) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, stateTable)
	// ORA-00955: name is already used by an existing object
	return fmt.Sprintf("BEGIN EXECUTE IMMEDIATE q'[%s]'; EXCEPTION WHEN OTHERS THEN IF SQLCODE != -955 THEN RAISE; END IF; END;", ddl)
}

func (d *OracleDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf(`MERGE INTO %s s USING (SELECT :1 AS table_name, :2 AS last_sync_timestamp, :3 AS last_synced_row_id, :4 AS created_at, :5 AS updated_at FROM dual) src ON (s.table_name = src.table_name) WHEN NOT MATCHED THEN INSERT (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES (src.table_name, src.last_sync_timestamp, src.last_synced_row_id, src.created_at, src.updated_at)`, stateTable)
}

func (d *OracleDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = :1", stateTable)
}

func (d *OracleDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = :1, last_synced_row_id = :2, updated_at = :3 WHERE table_name = :4", stateTable)
}

func (d *OracleDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	// Unquoted identifiers are stored upper case.
	return "SELECT COUNT(*) FROM USER_TABLES WHERE TABLE_NAME = UPPER(:1)", []any{table}
}

func (d *OracleDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *OracleDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *OracleDialect) MergeQuery(dest, staging string, t schema.Table) string {
	// Oracle rejects the AS keyword on table aliases and wants ON (...).
	return buildAnsiMerge(dest, staging, t, mergeOptions{parenOn: true})
}

func (d *OracleDialect) DropTableQuery(qualified string) string {
	// ORA-00942: table or view does not exist
	return fmt.Sprintf("BEGIN EXECUTE IMMEDIATE 'DROP TABLE %s'; EXCEPTION WHEN OTHERS THEN IF SQLCODE != -942 THEN RAISE; END IF; END;", qualified)
}

func (d *OracleDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "NUMBER(19)"
	case schema.TypeBoolean:
		return "NUMBER(1)"
	case schema.TypeFloat:
		return "BINARY_DOUBLE"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR2(4000)"
	}
}
