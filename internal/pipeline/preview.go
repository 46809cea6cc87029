package pipeline

import (
	"context"
	"fmt"
)

// FeedPreview is the dry-run view of one feed.
type FeedPreview struct {
	FeedID string
	Name   string
	URL    string
	Items  int
	New    int
	Err    error
}

// PreviewResult describes what a run would process.
type PreviewResult struct {
	Feeds            []FeedPreview
	NewArticles      int
	HasPublishTarget bool
}

// Preview fetches every feed and counts unprocessed items without
// summarizing, publishing, or writing to any store.
func (p *Pipeline) Preview(ctx context.Context) (*PreviewResult, error) {
	feeds, err := p.deps.Feeds.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading feeds: %w", err)
	}
	target, err := p.deps.Target.GetPublishTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading publish target: %w", err)
	}
	processed, err := p.deps.Ledger.ProcessedGUIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processed articles: %w", err)
	}

	seen := make(map[string]struct{}, len(processed))
	for guid := range processed {
		seen[guid] = struct{}{}
	}

	res := &PreviewResult{HasPublishTarget: target != nil}
	for _, feed := range feeds {
		fp := FeedPreview{FeedID: feed.ID, Name: feed.DisplayName(), URL: feed.URL}

		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		items, err := p.deps.Fetcher.Fetch(fetchCtx, feed.URL)
		cancel()
		if err != nil {
			fp.Err = err
			res.Feeds = append(res.Feeds, fp)
			continue
		}

		fp.Items = len(items)
		for _, item := range items {
			guid := item.Identifier()
			if guid == "" {
				continue
			}
			if _, ok := seen[guid]; ok {
				continue
			}
			seen[guid] = struct{}{}
			fp.New++
		}
		res.NewArticles += fp.New
		res.Feeds = append(res.Feeds, fp)
	}
	return res, nil
}
