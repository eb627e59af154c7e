package dataset

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB is a SQLite database holding one film dataset.
type DB struct {
	db *sql.DB
}

// OpenSQL creates or opens a SQLite database at the given path and applies
// the dataset schema. An empty path means MemoryPath.
//
// The pool is limited to one connection: every connection to ":memory:"
// would otherwise see its own empty database.
func OpenSQL(path string) (*DB, error) {
	if path == "" {
		path = MemoryPath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, path == MemoryPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func applyPragmas(db *sql.DB, memory bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
	}
	if !memory {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// ExecDump runs a script of SQL statements in one transaction.
func (d *DB) ExecDump(ctx context.Context, script string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dump: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		tx.Rollback()
		return fmt.Errorf("exec dump: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dump: %w", err)
	}
	return nil
}

// Records reads every table back as an ordered record batch.
func (d *DB) Records(ctx context.Context) ([]store.Record, error) {
	var recs []store.Record

	reads := []struct {
		table string
		query string
		scan  func(*sql.Rows) (store.Record, error)
	}{
		{"country", "SELECT id, name FROM country ORDER BY id", func(r *sql.Rows) (store.Record, error) {
			var key int64
			var name string
			err := r.Scan(&key, &name)
			return store.CountryRecord(key, name), err
		}},
		{"director", "SELECT id, identity FROM director ORDER BY id", func(r *sql.Rows) (store.Record, error) {
			var key int64
			var identity string
			err := r.Scan(&key, &identity)
			return store.DirectorRecord(key, identity), err
		}},
		{"actor", "SELECT id, identity, birth_date FROM actor ORDER BY id", func(r *sql.Rows) (store.Record, error) {
			var key int64
			var identity string
			var birth sql.NullString
			if err := r.Scan(&key, &identity, &birth); err != nil {
				return store.Record{}, err
			}
			var date *model.Date
			if birth.Valid && birth.String != "" {
				d, err := model.ParseDate(birth.String)
				if err != nil {
					return store.Record{}, fmt.Errorf("actor %d: %w", key, err)
				}
				date = &d
			}
			return store.ActorRecord(key, identity, date), nil
		}},
		{"film", "SELECT id, title, year FROM film ORDER BY id", func(r *sql.Rows) (store.Record, error) {
			var key int64
			var title string
			var year int
			err := r.Scan(&key, &title, &year)
			return store.FilmRecord(key, title, year), err
		}},
		{"role", "SELECT id, name, actor_id, film_id FROM role ORDER BY id", func(r *sql.Rows) (store.Record, error) {
			var key, actor, film int64
			var name string
			err := r.Scan(&key, &name, &actor, &film)
			return store.RoleRecord(key, name, actor, film), err
		}},
		{"film_country", "SELECT film_id, country_id FROM film_country ORDER BY film_id, rowid", func(r *sql.Rows) (store.Record, error) {
			var film, country int64
			err := r.Scan(&film, &country)
			return store.FilmCountryRecord(film, country), err
		}},
		{"film_director", "SELECT film_id, director_id FROM film_director ORDER BY film_id, rowid", func(r *sql.Rows) (store.Record, error) {
			var film, director int64
			err := r.Scan(&film, &director)
			return store.FilmDirectorRecord(film, director), err
		}},
	}

	for _, rd := range reads {
		rows, err := d.db.QueryContext(ctx, rd.query)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rd.table, err)
		}
		for rows.Next() {
			rec, err := rd.scan(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s: %w", rd.table, err)
			}
			recs = append(recs, rec)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("read %s: %w", rd.table, err)
		}
		rows.Close()
	}

	return recs, nil
}

// Insert writes records into the dataset tables in one transaction.
// Record keys become row ids.
func (d *DB) Insert(ctx context.Context, records []store.Record) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for i, rec := range records {
		var query string
		var args []any
		switch rec.Kind {
		case store.RecordCountry:
			query, args = "INSERT INTO country (id, name) VALUES (?, ?)", []any{rec.Key, rec.Name}
		case store.RecordDirector:
			query, args = "INSERT INTO director (id, identity) VALUES (?, ?)", []any{rec.Key, rec.Name}
		case store.RecordActor:
			var birth any
			if rec.BirthDate != nil {
				birth = rec.BirthDate.String()
			}
			query, args = "INSERT INTO actor (id, identity, birth_date) VALUES (?, ?, ?)", []any{rec.Key, rec.Name, birth}
		case store.RecordFilm:
			query, args = "INSERT INTO film (id, title, year) VALUES (?, ?, ?)", []any{rec.Key, rec.Name, rec.Year}
		case store.RecordRole:
			query, args = "INSERT INTO role (id, name, actor_id, film_id) VALUES (?, ?, ?, ?)",
				[]any{rec.Key, rec.Name, rec.ActorKey, rec.FilmKey}
		case store.RecordFilmCountry:
			query, args = "INSERT INTO film_country (film_id, country_id) VALUES (?, ?)", []any{rec.FilmKey, rec.CountryKey}
		case store.RecordFilmDirector:
			query, args = "INSERT INTO film_director (film_id, director_id) VALUES (?, ?)", []any{rec.FilmKey, rec.DirectorKey}
		default:
			return fmt.Errorf("insert record %d: unknown kind %q", i, rec.Kind)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert record %d (%s key=%d): %w", i, rec.Kind, rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Row is one result row of a rendered plan: the dataset key and display
// attribute of the projected entity.
type Row struct {
	Key     int64
	Display string
}

// QueryRows executes a query selecting (id, display) pairs, such as the
// output of querysql.SQLCompiler.
func (d *DB) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Key, &r.Display); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
