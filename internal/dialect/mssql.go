package dialect

import (
	"fmt"

	"warehouse-sync/internal/schema"
)

// MSSQLDialect targets SQL Server 2016+ (DROP TABLE IF EXISTS). Primarily a
// warehouse destination; MERGE is native.
type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) QualifyTable(schemaName, table string) string {
	if schemaName == "" {
		schemaName = "dbo"
	}
	return schemaName + "." + table
}

func (d *MSSQLDialect) ChangedRowsQuery(table string, cols []string) string {
	return BuildChangedRowsQuery(table, cols, d.Placeholder)
}

func (d *MSSQLDialect) CreateStateTableQuery(stateTable string) string {
	return fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (
		id BIGINT IDENTITY(1,1) PRIMARY KEY,
		table_name NVARCHAR(255) NOT NULL UNIQUE,
		last_sync_timestamp DATETIME2 NOT NULL,
		last_synced_row_id BIGINT NOT NULL,
		created_at DATETIME2 NOT NULL,
		updated_at DATETIME2 NOT NULL
	)`, stateTable, stateTable)
}

func (d *MSSQLDialect) InsertStateIfAbsentQuery(stateTable string) string {
	return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM %s WHERE table_name = @p1) INSERT INTO %s (table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at) VALUES (@p1, @p2, @p3, @p4, @p5)", stateTable, stateTable)
}

func (d *MSSQLDialect) SelectStateQuery(stateTable string) string {
	return fmt.Sprintf("SELECT last_sync_timestamp, last_synced_row_id FROM %s WHERE table_name = @p1", stateTable)
}

func (d *MSSQLDialect) UpdateStateQuery(stateTable string) string {
	return fmt.Sprintf("UPDATE %s SET last_sync_timestamp = @p1, last_synced_row_id = @p2, updated_at = @p3 WHERE table_name = @p4", stateTable)
}

func (d *MSSQLDialect) TableExistsQuery(schemaName, table string) (string, []any) {
	if schemaName == "" {
		schemaName = "dbo"
	}
	return "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2", []any{schemaName, table}
}

func (d *MSSQLDialect) CreateTableQuery(qualified string, t schema.Table) string {
	return BuildCreateTable(qualified, t, d.TypeFor)
}

func (d *MSSQLDialect) InsertQuery(qualified string, cols []string) string {
	return BuildInsert(qualified, cols, d.Placeholder)
}

func (d *MSSQLDialect) MergeQuery(dest, staging string, t schema.Table) string {
	// T-SQL requires MERGE to be terminated with a semicolon.
	return buildAnsiMerge(dest, staging, t, mergeOptions{aliasKeyword: "AS ", terminator: ";"})
}

func (d *MSSQLDialect) DropTableQuery(qualified string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualified)
}

func (d *MSSQLDialect) TypeFor(ft schema.FieldType) string {
	switch ft {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeBoolean:
		return "BIT"
	case schema.TypeFloat:
		return "FLOAT"
	case schema.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
