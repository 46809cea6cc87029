package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

type feedRow struct {
	ID            string  `db:"id"`
	Position      int     `db:"position"`
	URL           string  `db:"url"`
	Name          string  `db:"name"`
	LastFetchedAt *string `db:"last_fetched_at"`
}

func (r feedRow) toModel() model.FeedSource {
	f := model.FeedSource{ID: r.ID, URL: r.URL, Name: r.Name}
	if r.LastFetchedAt != nil {
		if t, err := parseTime(*r.LastFetchedAt); err == nil {
			f.LastFetchedAt = &t
		}
	}
	return f
}

// AddFeed appends a feed to the registry and returns it with its new ID.
func (db *DB) AddFeed(ctx context.Context, url, name string) (model.FeedSource, error) {
	feed, err := model.NewFeedSource(url, name)
	if err != nil {
		return model.FeedSource{}, err
	}
	feed.ID = uuid.NewString()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return model.FeedSource{}, fmt.Errorf("begin add feed: %w", err)
	}
	defer tx.Rollback()

	query, args, err := db.builder().Select("COALESCE(MAX(position), 0) + 1").From("feeds").ToSql()
	if err != nil {
		return model.FeedSource{}, err
	}
	var position int
	if err := tx.GetContext(ctx, &position, query, args...); err != nil {
		return model.FeedSource{}, fmt.Errorf("next feed position: %w", err)
	}

	query, args, err = db.builder().
		Insert("feeds").
		Columns("id", "position", "url", "name").
		Values(feed.ID, position, feed.URL, feed.Name).
		ToSql()
	if err != nil {
		return model.FeedSource{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return model.FeedSource{}, fmt.Errorf("inserting feed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.FeedSource{}, fmt.Errorf("commit add feed: %w", err)
	}
	return feed, nil
}

// RemoveFeed deletes a feed. It returns model.ErrNotFound for unknown IDs.
func (db *DB) RemoveFeed(ctx context.Context, id string) error {
	query, args, err := db.builder().Delete("feeds").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListFeeds returns all feeds in the order they were added.
func (db *DB) ListFeeds(ctx context.Context) ([]model.FeedSource, error) {
	query, args, err := db.builder().
		Select("id", "position", "url", "name", "last_fetched_at").
		From("feeds").
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []feedRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing feeds: %w", err)
	}

	feeds := make([]model.FeedSource, 0, len(rows))
	for _, r := range rows {
		feeds = append(feeds, r.toModel())
	}
	return feeds, nil
}

// GetFeed returns a single feed, or model.ErrNotFound.
func (db *DB) GetFeed(ctx context.Context, id string) (model.FeedSource, error) {
	query, args, err := db.builder().
		Select("id", "position", "url", "name", "last_fetched_at").
		From("feeds").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return model.FeedSource{}, err
	}

	var rows []feedRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return model.FeedSource{}, fmt.Errorf("getting feed: %w", err)
	}
	if len(rows) == 0 {
		return model.FeedSource{}, model.ErrNotFound
	}
	return rows[0].toModel(), nil
}

// UpdateFeed replaces the stored feed with the same ID. Unknown IDs are
// ignored; the registry position never changes.
func (db *DB) UpdateFeed(ctx context.Context, feed model.FeedSource) error {
	var lastFetched *string
	if feed.LastFetchedAt != nil {
		s := formatTime(*feed.LastFetchedAt)
		lastFetched = &s
	}

	query, args, err := db.builder().
		Update("feeds").
		Set("url", feed.URL).
		Set("name", feed.Name).
		Set("last_fetched_at", lastFetched).
		Where("id = ?", feed.ID).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating feed: %w", err)
	}
	return nil
}

