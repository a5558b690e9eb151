package schema

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Registry.Schema for tables that were never
// registered.
var ErrNotFound = errors.New("table not registered")

// Registry is the static lookup from logical table name to its schema and
// classification. Onboarding a new table for replication means adding it
// here; the sync loop itself never changes.
type Registry struct {
	tables []Table
	byName map[string]Table
}

// New validates and indexes the given tables. Every table must have a unique
// name and declare an integer id field, since the id is the extraction
// cursor and the merge key.
func New(tables ...Table) (*Registry, error) {
	r := &Registry{byName: make(map[string]Table, len(tables))}
	for _, t := range tables {
		if t.Name == "" {
			return nil, errors.New("table with empty name")
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}
		idx := t.IDIndex()
		if idx < 0 {
			return nil, fmt.Errorf("table %q has no id field", t.Name)
		}
		if t.Fields[idx].Type != TypeInteger {
			return nil, fmt.Errorf("table %q: id must be %s, got %s", t.Name, TypeInteger, t.Fields[idx].Type)
		}
		switch t.Classification {
		case InsertOnly, Mutable:
		default:
			return nil, fmt.Errorf("table %q has unknown classification %q", t.Name, t.Classification)
		}
		r.tables = append(r.tables, t)
		r.byName[t.Name] = t
	}
	return r, nil
}

// MustNew is New for static declarations.
func MustNew(tables ...Table) *Registry {
	r, err := New(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Schema looks up a table by name. Pure lookup, no side effects.
func (r *Registry) Schema(name string) (Table, error) {
	t, ok := r.byName[name]
	if !ok {
		return Table{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return t, nil
}

// Tables returns every registered table in registration order.
func (r *Registry) Tables() []Table {
	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Names returns the registered table names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tables))
	for i, t := range r.tables {
		names[i] = t.Name
	}
	return names
}

// Len reports the number of registered tables.
func (r *Registry) Len() int { return len(r.tables) }
