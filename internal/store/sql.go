package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"crewmates/internal/model"
)

var _ Store = (*SQL)(nil)

// sqliteTimeLayout is fixed-width so that TEXT ordering equals time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type dialect struct {
	name   string
	schema func(table string) []string
	bind   func(n int) string
	// timeArg converts a timestamp into the driver value stored in created_at.
	timeArg func(t time.Time) any
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: func(table string) []string {
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				speed REAL NOT NULL,
				color TEXT NOT NULL,
				created_at TEXT NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS ` + table + `_created_at_idx ON ` + table + `(created_at);`,
		}
	},
	bind:    func(int) string { return "?" },
	timeArg: func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

var postgresDialect = dialect{
	name: "postgres",
	schema: func(table string) []string {
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				name TEXT NOT NULL,
				speed DOUBLE PRECISION NOT NULL,
				color TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS ` + table + `_created_at_idx ON ` + table + `(created_at)`,
		}
	},
	bind:    func(n int) string { return "$" + strconv.Itoa(n) },
	timeArg: func(t time.Time) any { return t.UTC() },
}

// SQL is a database/sql backed Store (SQLite or Postgres).
type SQL struct {
	db      *sql.DB
	dialect dialect
	table   string
	now     func() time.Time
}

func newSQL(ctx context.Context, db *sql.DB, d dialect, table string) (*SQL, error) {
	if !tableNameRe.MatchString(table) {
		_ = db.Close()
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	for _, stmt := range d.schema(table) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: ensure table %s: %w", d.name, table, err)
		}
	}
	return &SQL{
		db:      db,
		dialect: d,
		table:   table,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// DB exposes the underlying sql.DB for tests.
func (s *SQL) DB() *sql.DB { return s.db }

const sqlColumns = `id, name, speed, color, created_at`

func (s *SQL) Select(ctx context.Context) ([]model.Crewmate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqlColumns+` FROM `+s.table+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []model.Crewmate{}
	for rows.Next() {
		rec, err := scanCrewmate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQL) Insert(ctx context.Context, f model.Fields) (model.Crewmate, error) {
	f, err := prepare(f, s.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	b := s.dialect.bind
	q := fmt.Sprintf(`INSERT INTO %s (name, speed, color, created_at) VALUES (%s, %s, %s, %s) RETURNING %s`,
		s.table, b(1), b(2), b(3), b(4), sqlColumns)
	row := s.db.QueryRowContext(ctx, q, f.Name, f.Speed, string(f.Color), s.dialect.timeArg(f.CreatedAt))
	return scanCrewmate(row)
}

func (s *SQL) Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error) {
	f, err := prepare(f, s.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	key, ok := parseSQLID(id)
	if !ok {
		return model.Crewmate{}, notFound(id)
	}
	b := s.dialect.bind
	q := fmt.Sprintf(`UPDATE %s SET name = %s, speed = %s, color = %s, created_at = %s WHERE id = %s RETURNING %s`,
		s.table, b(1), b(2), b(3), b(4), b(5), sqlColumns)
	row := s.db.QueryRowContext(ctx, q, f.Name, f.Speed, string(f.Color), s.dialect.timeArg(f.CreatedAt), key)
	rec, err := scanCrewmate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Crewmate{}, notFound(id)
	}
	return rec, err
}

func (s *SQL) Delete(ctx context.Context, id string) error {
	key, ok := parseSQLID(id)
	if !ok {
		return notFound(id)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = `+s.dialect.bind(1), key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }

func parseSQLID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	return n, err == nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrewmate(r rowScanner) (model.Crewmate, error) {
	var (
		id    int64
		rec   model.Crewmate
		color string
		at    timeValue
	)
	if err := r.Scan(&id, &rec.Name, &rec.Speed, &color, &at); err != nil {
		return model.Crewmate{}, err
	}
	rec.ID = strconv.FormatInt(id, 10)
	rec.Color = model.Color(color)
	rec.CreatedAt = at.t
	return rec, nil
}

// timeValue scans TIMESTAMPTZ (time.Time) and SQLite TEXT columns alike.
type timeValue struct{ t time.Time }

func (v *timeValue) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		v.t = x.UTC()
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	case nil:
		v.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("created_at: unsupported type %T", src)
	}
}

func (v *timeValue) parse(s string) error {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			v.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", s)
}
