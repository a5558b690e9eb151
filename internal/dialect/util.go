package dialect

import (
	"fmt"
	"strings"

	"warehouse-sync/internal/schema"
)

// GeneratePlaceholders builds a comma-separated placeholder list using the
// dialect's placeholder function.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// BuildChangedRowsQuery is the shared cursor extraction query. The single
// bind arg is the exclusive watermark.
func BuildChangedRowsQuery(table string, cols []string, placeholderFunc func(int) string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id > %s ORDER BY id",
		strings.Join(cols, ", "), table, placeholderFunc(0))
}

// BuildCreateTable renders the destination DDL from the declared schema, in
// declared field order. Mutable tables get a primary key on id because the
// mysql/sqlite merge fallbacks key the conflict on it; append tables stay
// keyless so a replayed batch lands as duplicate rows rather than erroring.
func BuildCreateTable(qualified string, t schema.Table, typeFor func(schema.FieldType) string) string {
	defs := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		def := fmt.Sprintf("%s %s", f.Name, typeFor(f.Type))
		if f.Name == "id" && t.Classification == schema.Mutable {
			def += " PRIMARY KEY"
		} else if f.Required {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(defs, ", "))
}

// BuildInsert renders a plain parameterized insert for the given columns.
func BuildInsert(qualified string, cols []string, placeholderFunc func(int) string) string {
	vals := GeneratePlaceholders(len(cols), placeholderFunc)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qualified, strings.Join(cols, ", "), vals)
}

// mergeOptions captures the small syntax differences between the backends
// that support a real MERGE statement.
type mergeOptions struct {
	aliasKeyword  string // "AS " or ""
	parenOn       bool   // Oracle wants ON (...) parenthesized
	terminator    string // MSSQL requires the statement to end with ;
	bareSetTarget bool   // postgres and duckdb reject an alias on the SET column
}

// buildAnsiMerge renders MERGE INTO dest USING staging ON id. The update and
// insert column sets come from the schema at call time, so a new field added
// to the registry participates without touching this builder.
func buildAnsiMerge(dest, staging string, t schema.Table, opts mergeOptions) string {
	var sets []string
	for _, c := range t.MergeColumns() {
		if opts.bareSetTarget {
			sets = append(sets, fmt.Sprintf("%s = s.%s", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("d.%s = s.%s", c, c))
		}
	}
	cols := t.Columns()
	srcCols := make([]string, len(cols))
	for i, c := range cols {
		srcCols[i] = "s." + c
	}
	on := "d.id = s.id"
	if opts.parenOn {
		on = "(" + on + ")"
	}
	return fmt.Sprintf(
		"MERGE INTO %s %sd USING %s %ss ON %s WHEN MATCHED THEN UPDATE SET %s WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)%s",
		dest, opts.aliasKeyword, staging, opts.aliasKeyword, on,
		strings.Join(sets, ", "),
		strings.Join(cols, ", "), strings.Join(srcCols, ", "),
		opts.terminator)
}

func joinCols(cols []string) string { return strings.Join(cols, ", ") }

func qualify(schemaName, table string) string {
	if schemaName == "" {
		return table
	}
	return schemaName + "." + table
}
