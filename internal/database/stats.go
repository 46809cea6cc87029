package database

import (
	"context"
	"fmt"
)

// Stats contains aggregate database statistics.
type Stats struct {
	Feeds             int
	ProcessedArticles int
	LogEntries        int
	Posted            int
	Errors            int
	HasPublishTarget  bool
}

// GetStats returns counts across all stores. Posted and Errors only cover the
// retained part of the processing log.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}

	counts := []struct {
		dest  *int
		table string
		where string
	}{
		{&s.Feeds, "feeds", ""},
		{&s.ProcessedArticles, "processed_articles", ""},
		{&s.LogEntries, "processing_log", ""},
		{&s.Posted, "processing_log", "status = 'posted'"},
		{&s.Errors, "processing_log", "status = 'error'"},
	}
	for _, c := range counts {
		b := db.builder().Select("COUNT(*)").From(c.table)
		if c.where != "" {
			b = b.Where(c.where)
		}
		query, args, err := b.ToSql()
		if err != nil {
			return nil, err
		}
		if err := db.conn.GetContext(ctx, c.dest, query, args...); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	target, err := db.GetPublishTarget(ctx)
	if err != nil {
		return nil, err
	}
	s.HasPublishTarget = target != nil
	return s, nil
}
