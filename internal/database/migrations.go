package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
// DDL must stay valid for both SQLite and Postgres.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS feeds (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    url TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    last_fetched_at TEXT
);

CREATE TABLE IF NOT EXISTS publish_target (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    site_url TEXT NOT NULL,
    username TEXT NOT NULL,
    credential TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_articles (
    guid TEXT PRIMARY KEY,
    processed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS processing_log (
    id TEXT PRIMARY KEY,
    seq BIGINT NOT NULL,
    article_guid TEXT NOT NULL,
    article_title TEXT NOT NULL,
    feed_url TEXT NOT NULL,
    logged_at TEXT NOT NULL,
    status TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    is_suitable BOOLEAN,
    posted_to_wordpress BOOLEAN,
    published_url TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_feeds_position ON feeds(position);
CREATE UNIQUE INDEX IF NOT EXISTS idx_processing_log_seq ON processing_log(seq);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
