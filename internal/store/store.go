// Package store persists damage records. Records are keyed by their natural
// key (project, drawing, span, part, element, damage, severity and damage
// coordinate); re-importing a drawing leaves existing rows untouched.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
	"github.com/a3tai/mcp-bridge-inspector/internal/metrics"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Outcome reports what Upsert did.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUnchanged
)

func (o Outcome) String() string {
	if o == OutcomeInserted {
		return "inserted"
	}
	return "unchanged"
}

// Sink is what the import pipeline writes records to.
type Sink interface {
	Upsert(ctx context.Context, rec record.DamageRecord) (Outcome, error)
	List(ctx context.Context, project, drawing string) ([]record.DamageRecord, error)
	DeleteAt(ctx context.Context, project, drawing string, x, y, eps float64) (int64, error)
	Close() error
}

// DB is a Sink over database/sql.
type DB struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

const columns = `id, project, drawing, span, part_name, symbol, element_number,
	damage_code, damage_name, severity, comment, member, join_text, memo,
	damage_x, damage_y, picture_x, picture_y, photo_refs, picture_number, annotation`

const naturalKey = `project, drawing, span, part_name, element_number, damage_code, severity, damage_x, damage_y`

// Open connects to driver/dsn and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == DriverSQLite && dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA busy_timeout = 10000", "PRAGMA foreign_keys = ON"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &DB{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) migrate(ctx context.Context) error {
	floatType := "REAL"
	if s.driver == DriverPostgres {
		floatType = "DOUBLE PRECISION"
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS damage_records (
	id TEXT PRIMARY KEY,
	project TEXT NOT NULL,
	drawing TEXT NOT NULL,
	span TEXT NOT NULL,
	part_name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	element_number TEXT NOT NULL,
	damage_code TEXT NOT NULL,
	damage_name TEXT NOT NULL,
	severity TEXT NOT NULL,
	comment TEXT NOT NULL,
	member TEXT NOT NULL,
	join_text TEXT NOT NULL,
	memo TEXT NOT NULL,
	damage_x %[1]s NOT NULL,
	damage_y %[1]s NOT NULL,
	picture_x %[1]s,
	picture_y %[1]s,
	photo_refs TEXT NOT NULL,
	picture_number INTEGER NOT NULL,
	annotation TEXT NOT NULL,
	UNIQUE (%[2]s)
)`, floatType, naturalKey)

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create damage_records: %w", err)
	}
	return nil
}

// placeholders returns n bind parameters starting at from.
func (s *DB) placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		if s.driver == DriverPostgres {
			out[i] = "$" + strconv.Itoa(from+i)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// Upsert inserts rec unless a row with the same natural key exists.
func (s *DB) Upsert(ctx context.Context, rec record.DamageRecord) (Outcome, error) {
	refs := rec.PhotoRefs
	if refs == nil {
		refs = []string{}
	}
	photos, err := json.Marshal(refs)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("encode photo refs: %w", err)
	}

	var px, py sql.NullFloat64
	if rec.PictureCoordinate != nil {
		px = sql.NullFloat64{Float64: rec.PictureCoordinate.X, Valid: true}
		py = sql.NullFloat64{Float64: rec.PictureCoordinate.Y, Valid: true}
	}

	args := []any{
		rec.ID, rec.Project, rec.Drawing, rec.Span, rec.PartName, rec.Symbol, rec.ElementNumber,
		rec.DamageCode, rec.DamageName, rec.Severity, rec.Comment, rec.Member, rec.Join, rec.Memo,
		rec.DamageCoordinate.X, rec.DamageCoordinate.Y, px, py, string(photos), rec.PictureNumber, rec.Annotation,
	}
	query := fmt.Sprintf("INSERT INTO damage_records (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		columns, strings.Join(s.placeholders(1, len(args)), ", "), naturalKey)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.RecordOutcome("error")
		return OutcomeUnchanged, fmt.Errorf("upsert %s: %w", rec.NaturalKey(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		metrics.RecordOutcome(OutcomeUnchanged.String())
		s.logger.Debug("record already stored",
			zap.String("project", rec.Project),
			zap.String("drawing", rec.Drawing),
			zap.String("span", rec.Span),
			zap.Error(inserrors.NewPersistenceConflict(rec.NaturalKey())))
		return OutcomeUnchanged, nil
	}
	metrics.RecordOutcome(OutcomeInserted.String())
	return OutcomeInserted, nil
}

// List returns every record of a drawing in report order.
func (s *DB) List(ctx context.Context, project, drawing string) ([]record.DamageRecord, error) {
	ph := s.placeholders(1, 2)
	query := fmt.Sprintf("SELECT %s FROM damage_records WHERE project = %s AND drawing = %s",
		columns, ph[0], ph[1])

	rows, err := s.db.QueryContext(ctx, query, project, drawing)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []record.DamageRecord
	for rows.Next() {
		var (
			rec    record.DamageRecord
			px, py sql.NullFloat64
			photos string
		)
		err := rows.Scan(&rec.ID, &rec.Project, &rec.Drawing, &rec.Span, &rec.PartName, &rec.Symbol,
			&rec.ElementNumber, &rec.DamageCode, &rec.DamageName, &rec.Severity, &rec.Comment,
			&rec.Member, &rec.Join, &rec.Memo, &rec.DamageCoordinate.X, &rec.DamageCoordinate.Y,
			&px, &py, &photos, &rec.PictureNumber, &rec.Annotation)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if px.Valid && py.Valid {
			rec.PictureCoordinate = &record.Coordinate{X: px.Float64, Y: py.Float64}
		}
		if err := json.Unmarshal([]byte(photos), &rec.PhotoRefs); err != nil {
			return nil, fmt.Errorf("decode photo refs of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	record.Sort(out)
	return out, nil
}

// DeleteAt removes a drawing's records whose damage coordinate lies within
// eps of (x, y).
func (s *DB) DeleteAt(ctx context.Context, project, drawing string, x, y, eps float64) (int64, error) {
	ph := s.placeholders(1, 6)
	query := fmt.Sprintf(`DELETE FROM damage_records WHERE project = %s AND drawing = %s
	AND damage_x BETWEEN %s AND %s AND damage_y BETWEEN %s AND %s`,
		ph[0], ph[1], ph[2], ph[3], ph[4], ph[5])

	res, err := s.db.ExecContext(ctx, query, project, drawing, x-eps, x+eps, y-eps, y+eps)
	if err != nil {
		return 0, fmt.Errorf("delete records at %g,%g: %w", x, y, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("deleted records at coordinate",
		zap.String("project", project),
		zap.String("drawing", drawing),
		zap.Float64("x", x),
		zap.Float64("y", y),
		zap.Int64("count", n))
	return n, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

var _ Sink = (*DB)(nil)
