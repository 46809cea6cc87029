package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// dialect captures the few places where SQLite and Postgres differ.
type dialect struct {
	name        string
	driverName  string
	placeholder sq.PlaceholderFormat

	prepare          func(conn *sqlx.DB) error
	schemaVersion    func(conn *sqlx.DB) (int, error)
	setSchemaVersion func(conn *sqlx.DB, version int) error
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "", "sqlite":
		return sqliteDialect, nil
	case "postgres":
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

var sqliteDialect = dialect{
	name:        "sqlite",
	driverName:  "sqlite",
	placeholder: sq.Question,
	prepare: func(conn *sqlx.DB) error {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("setting journal mode: %w", err)
		}
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
		return nil
	},
	schemaVersion: getSchemaVersion,
	setSchemaVersion: func(conn *sqlx.DB, version int) error {
		// PRAGMA does not take bind parameters.
		_, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
		return err
	},
}

var postgresDialect = dialect{
	name:        "postgres",
	driverName:  "postgres",
	placeholder: sq.Dollar,
	prepare: func(conn *sqlx.DB) error {
		if err := conn.Ping(); err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		_, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
		if err != nil {
			return fmt.Errorf("creating schema_version table: %w", err)
		}
		return nil
	},
	schemaVersion: func(conn *sqlx.DB) (int, error) {
		var version int
		if err := conn.Get(&version, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
			return 0, fmt.Errorf("reading schema version: %w", err)
		}
		return version, nil
	},
	setSchemaVersion: func(conn *sqlx.DB, version int) error {
		_, err := conn.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, version)
		return err
	},
}
