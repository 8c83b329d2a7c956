// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It backs local development (database.driver=sqlite) and every
// store-level test, where ":memory:" gives each test its own database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross-compiles
// like any other Go package.
//
// WHY sqlx ON TOP OF database/sql?
// sqlx scans rows straight into structs using the `db` tags on the model
// types, which removes the column-by-column Scan calls and keeps the column
// list in one place (the SELECT).
package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/enrollment/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps an sqlx connection pool and implements repository.Store.
type DB struct {
	conn *sqlx.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/enrollment.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite.
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database, so the
	// pool must never open a second one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// The UNIQUE constraints are the authoritative guard against duplicate users
// and duplicate enrollments; the services' read-before-write checks only
// exist to produce friendly messages.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id    INTEGER PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS courses (
			course_id   TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			credits     INTEGER NOT NULL DEFAULT 0,
			term        TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating courses table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS enrollments (
			user_id   INTEGER NOT NULL,
			course_id TEXT NOT NULL,
			PRIMARY KEY (user_id, course_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating enrollments table: %w", err)
	}

	// counters hands out user ids. It only moves forward, so an id freed by
	// a delete is never given to a new user.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			seq  INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating counters table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure.
// The driver may report either the primary (SQLITE_CONSTRAINT) or the
// extended result code, so only the low byte is compared.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	msg := sqliteErr.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "PRIMARY KEY")
}
