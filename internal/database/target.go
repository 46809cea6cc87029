package database

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

// GetPublishTarget returns the stored publish target, or nil when none has
// been saved.
func (db *DB) GetPublishTarget(ctx context.Context) (*model.PublishTarget, error) {
	query, args, err := db.builder().
		Select("site_url", "username", "credential").
		From("publish_target").
		Where("id = 1").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []model.PublishTarget
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reading publish target: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SavePublishTarget replaces the publish target as a whole.
func (db *DB) SavePublishTarget(ctx context.Context, target model.PublishTarget) error {
	if !target.Complete() {
		return fmt.Errorf("publish target is incomplete")
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save target: %w", err)
	}
	defer tx.Rollback()

	query, args, err := db.builder().Delete("publish_target").ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing publish target: %w", err)
	}

	query, args, err = db.builder().
		Insert("publish_target").
		Columns("id", "site_url", "username", "credential", "updated_at").
		Values(1, target.SiteURL, target.Username, target.Credential, formatTime(db.now())).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving publish target: %w", err)
	}

	return tx.Commit()
}
