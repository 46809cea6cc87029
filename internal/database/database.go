package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL connection that backs the feed registry, the publish
// target, the dedup ledger and the processing log.
type DB struct {
	conn    *sqlx.DB
	dialect dialect
	dsn     string
	now     func() time.Time
}

// Open creates or opens a database for the given driver ("sqlite" or
// "postgres") and brings its schema up to date.
func Open(driver, dsn string) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	if d.name == "sqlite" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := d.prepare(conn); err != nil {
		conn.Close()
		return nil, err
	}

	if err := migrate(conn, d); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, dialect: d, dsn: dsn, now: time.Now}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the DSN the database was opened with.
func (db *DB) Path() string {
	return db.dsn
}

// Driver returns the name of the SQL dialect in use.
func (db *DB) Driver() string {
	return db.dialect.name
}

func (db *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.dialect.placeholder)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
