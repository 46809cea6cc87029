package database

import (
	"context"
	"fmt"
)

// ProcessedGUIDs returns the identifiers of every article that has reached a
// terminal outcome.
func (db *DB) ProcessedGUIDs(ctx context.Context) (map[string]struct{}, error) {
	query, args, err := db.builder().Select("guid").From("processed_articles").ToSql()
	if err != nil {
		return nil, err
	}

	var guids []string
	if err := db.conn.SelectContext(ctx, &guids, query, args...); err != nil {
		return nil, fmt.Errorf("reading processed guids: %w", err)
	}

	set := make(map[string]struct{}, len(guids))
	for _, g := range guids {
		set[g] = struct{}{}
	}
	return set, nil
}

// AddProcessedGUID records an identifier in the ledger. Adding an existing
// identifier is a no-op.
func (db *DB) AddProcessedGUID(ctx context.Context, guid string) error {
	query, args, err := db.builder().
		Insert("processed_articles").
		Columns("guid", "processed_at").
		Values(guid, formatTime(db.now())).
		Suffix("ON CONFLICT (guid) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adding processed guid: %w", err)
	}
	return nil
}
