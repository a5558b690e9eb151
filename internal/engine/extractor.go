package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/schema"
)

// Row is one extracted source row. Values are in the table's declared field
// order; ID is duplicated out of Values so the loader can compute the batch
// watermark without knowing the column layout.
type Row struct {
	ID     int64
	Values []any
}

// Extractor pulls changed rows from the operational store. Extraction is
// bounded by the watermark at call time: exactly the rows with id greater
// than the cursor, in ascending id order.
type Extractor struct {
	db  *sql.DB
	d   dialect.Dialect
	log zerolog.Logger
}

func NewExtractor(db *sql.DB, d dialect.Dialect, log zerolog.Logger) *Extractor {
	return &Extractor{db: db, d: d, log: log.With().Str("component", "extractor").Logger()}
}

// ChangedRows returns every row of the table with id > afterID, ordered by
// id. An empty result means the table is up to date.
func (e *Extractor) ChangedRows(ctx context.Context, t schema.Table, afterID int64) ([]Row, error) {
	cols := t.Columns()
	idIdx := t.IDIndex()

	rows, err := e.db.QueryContext(ctx, e.d.ChangedRowsQuery(t.Name, cols), afterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed rows from %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", t.Name, err)
		}
		e.normalize(t, values)

		id, ok := asInt64(values[idIdx])
		if !ok {
			return nil, fmt.Errorf("non-integer id in %s: %v", t.Name, values[idIdx])
		}
		out = append(out, Row{ID: id, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows from %s: %w", t.Name, err)
	}
	return out, nil
}

// normalize rewrites timestamp columns into the canonical string format.
// Values that do not parse are passed through unchanged with a warning; a
// malformed timestamp should not block the rest of the batch.
func (e *Extractor) normalize(t schema.Table, values []any) {
	for i, f := range t.Fields {
		if f.Type != schema.TypeTimestamp || values[i] == nil {
			continue
		}
		switch v := values[i].(type) {
		case time.Time:
			values[i] = v.UTC().Format(TimeFormat)
		case string:
			if s, ok := reformatTimestamp(v); ok {
				values[i] = s
			} else {
				e.log.Warn().Str("table", t.Name).Str("column", f.Name).Str("value", v).Msg("unparseable timestamp, passing through")
			}
		case []byte:
			if s, ok := reformatTimestamp(string(v)); ok {
				values[i] = s
			} else {
				e.log.Warn().Str("table", t.Name).Str("column", f.Name).Str("value", string(v)).Msg("unparseable timestamp, passing through")
			}
		}
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	TimeFormat,
	"2006-01-02",
}

func reformatTimestamp(s string) (string, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC().Format(TimeFormat), true
		}
	}
	return s, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		// MySQL's text protocol hands integer columns back as bytes.
		id, err := strconv.ParseInt(string(n), 10, 64)
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
