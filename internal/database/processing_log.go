package database

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

type logRow struct {
	ID                string `db:"id"`
	Seq               int64  `db:"seq"`
	ArticleGUID       string `db:"article_guid"`
	ArticleTitle      string `db:"article_title"`
	FeedURL           string `db:"feed_url"`
	LoggedAt          string `db:"logged_at"`
	Status            string `db:"status"`
	Summary           string `db:"summary"`
	IsSuitable        *bool  `db:"is_suitable"`
	PostedToWordPress *bool  `db:"posted_to_wordpress"`
	PublishedURL      string `db:"published_url"`
	ErrorMessage      string `db:"error_message"`
}

var logColumns = []string{
	"id", "seq", "article_guid", "article_title", "feed_url", "logged_at", "status",
	"summary", "is_suitable", "posted_to_wordpress", "published_url", "error_message",
}

func (r logRow) toModel() model.LogEntry {
	e := model.LogEntry{
		ID:                r.ID,
		ArticleGUID:       r.ArticleGUID,
		ArticleTitle:      r.ArticleTitle,
		FeedURL:           r.FeedURL,
		Status:            model.LogStatus(r.Status),
		Summary:           r.Summary,
		IsSuitable:        r.IsSuitable,
		PostedToWordPress: r.PostedToWordPress,
		PublishedURL:      r.PublishedURL,
		ErrorMessage:      r.ErrorMessage,
	}
	if t, err := parseTime(r.LoggedAt); err == nil {
		e.Timestamp = t
	} else {
		log.Printf("Invalid timestamp %q on log entry %s", r.LoggedAt, r.ID)
	}
	return e
}

// AppendLog stores a new log entry, assigning its ID and timestamp, and
// drops entries beyond the retention window. Any ID or timestamp on the
// argument is ignored.
func (db *DB) AppendLog(ctx context.Context, entry model.LogEntry) (model.LogEntry, error) {
	entry.ID = uuid.NewString()
	entry.Timestamp = db.now().UTC()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("begin append log: %w", err)
	}
	defer tx.Rollback()

	query, args, err := db.builder().Select("COALESCE(MAX(seq), 0) + 1").From("processing_log").ToSql()
	if err != nil {
		return model.LogEntry{}, err
	}
	var seq int64
	if err := tx.GetContext(ctx, &seq, query, args...); err != nil {
		return model.LogEntry{}, fmt.Errorf("next log sequence: %w", err)
	}

	query, args, err = db.builder().
		Insert("processing_log").
		Columns(logColumns...).
		Values(
			entry.ID, seq, entry.ArticleGUID, entry.ArticleTitle, entry.FeedURL,
			formatTime(entry.Timestamp), string(entry.Status), entry.Summary,
			entry.IsSuitable, entry.PostedToWordPress, entry.PublishedURL, entry.ErrorMessage,
		).
		ToSql()
	if err != nil {
		return model.LogEntry{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return model.LogEntry{}, fmt.Errorf("inserting log entry: %w", err)
	}

	query, args, err = db.builder().
		Delete("processing_log").
		Where("seq <= ?", seq-model.LogRetention).
		ToSql()
	if err != nil {
		return model.LogEntry{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return model.LogEntry{}, fmt.Errorf("pruning log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.LogEntry{}, fmt.Errorf("commit append log: %w", err)
	}
	return entry, nil
}

// ListLog returns up to limit entries, newest first. A limit outside
// 1..LogRetention returns the whole retained log.
func (db *DB) ListLog(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 || limit > model.LogRetention {
		limit = model.LogRetention
	}

	query, args, err := db.builder().
		Select(logColumns...).
		From("processing_log").
		OrderBy("seq DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []logRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing log: %w", err)
	}

	entries := make([]model.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}
