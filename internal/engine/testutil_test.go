package engine

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/schema"
)

var accountsTable = schema.Table{
	Name:           "accounts",
	Classification: schema.Mutable,
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInteger, Required: true},
		{Name: "email", Type: schema.TypeString, Required: true},
		{Name: "display_name", Type: schema.TypeString},
		{Name: "created_at", Type: schema.TypeTimestamp, Required: true},
	},
}

var eventsTable = schema.Table{
	Name:           "events",
	Classification: schema.InsertOnly,
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInteger, Required: true},
		{Name: "kind", Type: schema.TypeString, Required: true},
		{Name: "created_at", Type: schema.TypeTimestamp, Required: true},
	},
}

// openTestDB returns an isolated in-memory store. A single connection keeps
// every statement on the same database instance.
func openTestDB(t *testing.T) (*sql.DB, dialect.Dialect) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	d, err := dialect.GetDialect("sqlite3")
	require.NoError(t, err)
	return db, d
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func createSourceTable(t *testing.T, db *sql.DB, d dialect.Dialect, tbl schema.Table) {
	t.Helper()
	_, err := db.Exec(d.CreateTableQuery(tbl.Name, tbl))
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
