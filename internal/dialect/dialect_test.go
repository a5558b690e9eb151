package dialect

import (
	"strings"
	"testing"

	"warehouse-sync/internal/schema"
)

var testTable = schema.Table{
	Name:           "tasks",
	Classification: schema.Mutable,
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInteger, Required: true},
		{Name: "title", Type: schema.TypeString},
		{Name: "status", Type: schema.TypeString, Required: true},
		{Name: "created_at", Type: schema.TypeTimestamp, Required: true},
	},
}

func TestGetDialect(t *testing.T) {
	for _, driver := range []string{"sqlite3", "sqlite", "postgres", "mysql", "sqlserver", "mssql", "oracle", "duckdb"} {
		if _, err := GetDialect(driver); err != nil {
			t.Errorf("GetDialect(%s): %v", driver, err)
		}
	}
	if _, err := GetDialect("cassandra"); err == nil {
		t.Error("GetDialect(cassandra): expected error")
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite3", "?, ?, ?"},
		{"postgres", "$1, $2, $3"},
		{"mysql", "?, ?, ?"},
		{"sqlserver", "@p1, @p2, @p3"},
		{"oracle", ":1, :2, :3"},
		{"duckdb", "?, ?, ?"},
	}
	for _, tt := range tests {
		d, err := GetDialect(tt.driver)
		if err != nil {
			t.Fatalf("GetDialect(%s): %v", tt.driver, err)
		}
		if got := GeneratePlaceholders(3, d.Placeholder); got != tt.want {
			t.Errorf("%s placeholders = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestChangedRowsQuery(t *testing.T) {
	d, _ := GetDialect("postgres")
	got := d.ChangedRowsQuery("users", []string{"id", "email", "created_at"})
	want := "SELECT id, email, created_at FROM users WHERE id > $1 ORDER BY id"
	if got != want {
		t.Errorf("ChangedRowsQuery = %q, want %q", got, want)
	}
}

func TestCreateTableKeying(t *testing.T) {
	d, _ := GetDialect("sqlite3")

	mutable := d.CreateTableQuery("tasks", testTable)
	if !strings.Contains(mutable, "id INTEGER PRIMARY KEY") {
		t.Errorf("mutable table DDL missing id primary key: %s", mutable)
	}

	appendOnly := testTable
	appendOnly.Classification = schema.InsertOnly
	log := d.CreateTableQuery("tasks", appendOnly)
	if strings.Contains(log, "PRIMARY KEY") {
		t.Errorf("append table DDL must stay keyless so replays do not error: %s", log)
	}
	if !strings.Contains(log, "status TEXT NOT NULL") {
		t.Errorf("required field lost NOT NULL: %s", log)
	}
}

func TestMergeQueryShapes(t *testing.T) {
	tests := []struct {
		driver    string
		fragments []string
	}{
		{"postgres", []string{
			"MERGE INTO tasks AS d USING tasks_stage AS s ON d.id = s.id",
			"WHEN MATCHED THEN UPDATE SET title = s.title, status = s.status",
			"WHEN NOT MATCHED THEN INSERT (id, title, status, created_at) VALUES (s.id, s.title, s.status, s.created_at)",
		}},
		{"sqlserver", []string{
			"MERGE INTO tasks AS d USING tasks_stage AS s ON d.id = s.id",
			"(s.id, s.title, s.status, s.created_at);",
		}},
		{"oracle", []string{
			"MERGE INTO tasks d USING tasks_stage s ON (d.id = s.id)",
		}},
		{"duckdb", []string{
			"MERGE INTO tasks AS d USING tasks_stage AS s ON d.id = s.id",
		}},
		{"mysql", []string{
			"INSERT INTO tasks (id, title, status, created_at) SELECT id, title, status, created_at FROM tasks_stage",
			"ON DUPLICATE KEY UPDATE title = VALUES(title), status = VALUES(status)",
		}},
		{"sqlite3", []string{
			"ON CONFLICT(id) DO UPDATE SET title = excluded.title, status = excluded.status",
		}},
	}
	for _, tt := range tests {
		d, err := GetDialect(tt.driver)
		if err != nil {
			t.Fatalf("GetDialect(%s): %v", tt.driver, err)
		}
		got := d.MergeQuery("tasks", "tasks_stage", testTable)
		for _, frag := range tt.fragments {
			if !strings.Contains(got, frag) {
				t.Errorf("%s merge missing %q:\n%s", tt.driver, frag, got)
			}
		}
		if strings.Contains(got, "created_at = s.created_at") || strings.Contains(got, "created_at = VALUES(created_at)") || strings.Contains(got, "created_at = excluded.created_at") {
			t.Errorf("%s merge must not update created_at:\n%s", tt.driver, got)
		}
	}
}

func TestQualifyTable(t *testing.T) {
	tests := []struct {
		driver string
		schema string
		want   string
	}{
		{"postgres", "analytics", "analytics.events"},
		{"postgres", "", "events"},
		{"sqlserver", "", "dbo.events"},
		{"oracle", "analytics", "events"},
	}
	for _, tt := range tests {
		d, _ := GetDialect(tt.driver)
		if got := d.QualifyTable(tt.schema, "events"); got != tt.want {
			t.Errorf("%s QualifyTable(%q, events) = %q, want %q", tt.driver, tt.schema, got, tt.want)
		}
	}
}

func TestStateQueryBindings(t *testing.T) {
	// Every dialect takes the same five seed args in the same order, so the
	// tracker can stay backend-agnostic.
	for _, driver := range []string{"sqlite3", "postgres", "mysql", "sqlserver", "oracle", "duckdb"} {
		d, _ := GetDialect(driver)
		q := d.InsertStateIfAbsentQuery("sync_state")
		if !strings.Contains(q, "table_name, last_sync_timestamp, last_synced_row_id, created_at, updated_at") {
			t.Errorf("%s state seed has wrong column order:\n%s", driver, q)
		}
	}
}
