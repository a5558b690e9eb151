package schema

// FieldType is the primitive type of a replicated column. The dialect layer
// maps it to a concrete SQL type per backend.
type FieldType string

const (
	TypeInteger   FieldType = "integer"
	TypeString    FieldType = "string"
	TypeBoolean   FieldType = "boolean"
	TypeFloat     FieldType = "float"
	TypeTimestamp FieldType = "timestamp"
)

// Classification selects the load strategy for a table.
type Classification string

const (
	// InsertOnly tables are append logs: rows are never updated in the
	// source, so the loader writes them straight through.
	InsertOnly Classification = "insert_only"
	// Mutable tables may be edited in place in the source, so the loader
	// goes through a staging table and a merge keyed on row id.
	Mutable Classification = "mutable"
)

type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Table is the contract between the operational store's columns and the
// destination's columns. Field order is the column order everywhere: the
// extractor selects exactly these columns in this order, and the provisioner
// creates the destination table the same way. Immutable at runtime.
type Table struct {
	Name           string
	Fields         []Field
	Classification Classification
}

// Columns returns the declared column names in field order.
func (t Table) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// MergeColumns returns the columns the merge statement updates on a matched
// row id: everything except id and created_at, which are immutable by
// convention.
func (t Table) MergeColumns() []string {
	var cols []string
	for _, f := range t.Fields {
		if f.Name == "id" || f.Name == "created_at" {
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}

// IDIndex returns the position of the id field, or -1 if the table does not
// declare one. Registry validation guarantees >= 0 for registered tables.
func (t Table) IDIndex() int {
	for i, f := range t.Fields {
		if f.Name == "id" {
			return i
		}
	}
	return -1
}
