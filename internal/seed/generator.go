package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/engine"
	"warehouse-sync/internal/schema"
)

// Seeder fills the operational store with generated rows for local
// development and demos. It creates missing source tables from the declared
// schemas and appends rows with ids continuing past the current max, so
// repeated seeding produces fresh changes for the next sync pass.
type Seeder struct {
	db  *sql.DB
	d   dialect.Dialect
	reg *schema.Registry
	log zerolog.Logger
}

func New(db *sql.DB, d dialect.Dialect, reg *schema.Registry, log zerolog.Logger) *Seeder {
	return &Seeder{db: db, d: d, reg: reg, log: log.With().Str("component", "seeder").Logger()}
}

// Seed inserts rowsPerTable generated rows into every registered table.
func (s *Seeder) Seed(ctx context.Context, rowsPerTable int) error {
	for _, t := range s.reg.Tables() {
		if err := s.seedTable(ctx, t, rowsPerTable); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedTable(ctx context.Context, t schema.Table, n int) error {
	query, args := s.d.TableExistsQuery("", t.Name)
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return fmt.Errorf("failed to probe source table %s: %w", t.Name, err)
	}
	if count == 0 {
		if _, err := s.db.ExecContext(ctx, s.d.CreateTableQuery(t.Name, t)); err != nil {
			return fmt.Errorf("failed to create source table %s: %w", t.Name, err)
		}
	}

	var maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(id) FROM %s", t.Name)).Scan(&maxID); err != nil {
		return fmt.Errorf("failed to read max id from %s: %w", t.Name, err)
	}

	insert := s.d.InsertQuery(t.Name, t.Columns())
	for i := 0; i < n; i++ {
		id := maxID.Int64 + int64(i) + 1
		values := make([]any, len(t.Fields))
		for j, f := range t.Fields {
			if f.Name == "id" {
				values[j] = id
			} else {
				values[j] = fakeValue(f)
			}
		}
		if _, err := s.db.ExecContext(ctx, insert, values...); err != nil {
			return fmt.Errorf("failed to seed row into %s: %w", t.Name, err)
		}
	}
	s.log.Info().Str("table", t.Name).Int("rows", n).Msg("seeded")
	return nil
}

// fakeValue picks a plausible value by field name first, falling back to the
// declared type. Optional fields come back null some of the time.
func fakeValue(f schema.Field) any {
	if !f.Required && gofakeit.Number(0, 4) == 0 {
		return nil
	}
	switch {
	case f.Name == "email":
		return gofakeit.Email()
	case strings.Contains(f.Name, "first_name"):
		return gofakeit.FirstName()
	case strings.Contains(f.Name, "last_name"):
		return gofakeit.LastName()
	case strings.Contains(f.Name, "name"):
		return gofakeit.Name()
	case strings.Contains(f.Name, "title"):
		return gofakeit.Sentence(4)
	case strings.Contains(f.Name, "color"):
		return gofakeit.HexColor()
	case strings.Contains(f.Name, "status"):
		return gofakeit.RandomString([]string{"draft", "published", "archived"})
	case strings.Contains(f.Name, "type"):
		return gofakeit.RandomString([]string{"assignment", "quiz", "note"})
	case strings.HasSuffix(f.Name, "_id") || strings.HasSuffix(f.Name, "_by"):
		return int64(gofakeit.Number(1, 500))
	}
	switch f.Type {
	case schema.TypeInteger:
		return int64(gofakeit.Number(0, 1000))
	case schema.TypeBoolean:
		return gofakeit.Bool()
	case schema.TypeFloat:
		return gofakeit.Float64Range(0, 100)
	case schema.TypeTimestamp:
		return gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()).UTC().Format(engine.TimeFormat)
	default:
		return gofakeit.Sentence(6)
	}
}
