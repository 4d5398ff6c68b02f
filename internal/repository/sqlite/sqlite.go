// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so no
// C toolchain is needed and cross-compilation stays trivial. The facilities
// column stores the codec's canonical JSON-array form, which lets the search
// query test tag membership with the JSON1 json_each table-valued function.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite connection pool and runs migrations.
//
// dbPath examples:
//   - "data/pgdesk.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must stay at
	// one connection or later queries would see an empty schema.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress,
	// needed for a web server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; listings reference users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
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

// Users returns the user repository view over this connection pool.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Listings returns the listing repository view over this connection pool.
func (db *DB) Listings() *ListingDB {
	return &ListingDB{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	// The UNIQUE index on email (stored lower-cased by the service layer)
	// is what makes concurrent duplicate signups lose at the INSERT instead
	// of racing past an existence check.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id    INTEGER NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			rent        REAL NOT NULL,
			address     TEXT NOT NULL,
			city        TEXT NOT NULL,
			pincode     TEXT NOT NULL,
			distance    REAL NOT NULL,
			college     TEXT NOT NULL DEFAULT '',
			room_type   TEXT NOT NULL DEFAULT '',
			gender      TEXT NOT NULL DEFAULT '',
			deposit     REAL NOT NULL DEFAULT 0,
			facilities  TEXT NOT NULL DEFAULT '[]',
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_listings_owner_id ON listings(owner_id);
		CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	`)
	if err != nil {
		return fmt.Errorf("creating listings table: %w", err)
	}

	return nil
}
