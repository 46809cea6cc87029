package collect

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

const defaultMaxItems = 50

// Fetcher polls RSS/Atom feeds and maps their entries to article items.
type Fetcher struct {
	parser   *gofeed.Parser
	maxItems int
}

// NewFetcher creates a feed fetcher. A zero timeout or maxItems falls back to
// the defaults.
func NewFetcher(timeout time.Duration, userAgent string, maxItems int) *Fetcher {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Fetcher{parser: parser, maxItems: maxItems}
}

// Fetch downloads and parses one feed. Items are returned in feed order.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]model.ArticleItem, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	items := make([]model.ArticleItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(items) >= f.maxItems {
			break
		}
		items = append(items, parseItem(item))
	}

	log.Printf("Parsed %d entries from %s", len(items), feedURL)
	return items, nil
}

func parseItem(item *gofeed.Item) model.ArticleItem {
	return model.ArticleItem{
		GUID:        strings.TrimSpace(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Body:        HTMLToText(item.Content),
		Snippet:     HTMLToText(item.Description),
		PublishedAt: publishedAt(item),
	}
}

func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}

	// gofeed gives up on some non-standard layouts that dateparse still reads.
	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return &t
		}
	}
	return nil
}
