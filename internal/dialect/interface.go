package dialect

import "warehouse-sync/internal/schema"

// Dialect abstracts the SQL flavor differences between the operational store
// and the supported warehouse backends. Every query builder derives column
// lists from the declared schema at call time; nothing is hardcoded per table.
type Dialect interface {
	Name() string
	Placeholder(index int) string // Returns ?, $1, @p1, :1, etc.
	QualifyTable(schemaName, table string) string

	// Source side (operational store)
	ChangedRowsQuery(table string, cols []string) string // WHERE id > ? ORDER BY id

	// Sync tracking state (lives in the operational store)
	CreateStateTableQuery(stateTable string) string
	// Args, in order: table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at.
	InsertStateIfAbsentQuery(stateTable string) string
	// Arg: table_name. Selects last_sync_timestamp, last_synced_row_id.
	SelectStateQuery(stateTable string) string
	// Args, in order: last_sync_timestamp, last_synced_row_id, updated_at, table_name.
	UpdateStateQuery(stateTable string) string

	// Destination side (warehouse)
	TableExistsQuery(schemaName, table string) (query string, args []any)
	CreateTableQuery(qualified string, t schema.Table) string
	InsertQuery(qualified string, cols []string) string
	// Merge from staging into dest keyed on id: matched rows update every
	// column except id and created_at, unmatched rows insert in full.
	MergeQuery(dest, staging string, t schema.Table) string
	DropTableQuery(qualified string) string
	TypeFor(ft schema.FieldType) string
}
