package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/TobiSchelling/FeedPress/internal/model"
	"github.com/TobiSchelling/FeedPress/internal/publish"
	"github.com/TobiSchelling/FeedPress/internal/summarize"
)

// Synthetic article identifiers for run-level log entries.
const (
	guidNoTarget      = "system-wp-config"
	guidNoFeeds       = "system-no-feeds"
	guidNoNewArticles = "system-no-new-articles"
	guidFeedError     = "feed-error-"
)

const (
	untitledArticle   = "Untitled Article"
	untitledPost      = "Summarized Article"
	publishSkipSuffix = " WordPress posting was skipped due to missing configuration."
)

// FeedRegistry lists feeds and records fetch times.
type FeedRegistry interface {
	ListFeeds(ctx context.Context) ([]model.FeedSource, error)
	UpdateFeed(ctx context.Context, feed model.FeedSource) error
}

// TargetStore returns the publish target, or nil when none is configured.
type TargetStore interface {
	GetPublishTarget(ctx context.Context) (*model.PublishTarget, error)
}

// Ledger is the set of article identifiers that reached a terminal outcome.
type Ledger interface {
	ProcessedGUIDs(ctx context.Context) (map[string]struct{}, error)
	AddProcessedGUID(ctx context.Context, guid string) error
}

// ProcessingLog stores outcome entries.
type ProcessingLog interface {
	AppendLog(ctx context.Context, entry model.LogEntry) (model.LogEntry, error)
}

// Fetcher returns the current items of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]model.ArticleItem, error)
}

// Summarizer condenses article text.
type Summarizer interface {
	Summarize(ctx context.Context, body string) (summarize.Result, error)
}

// Publisher pushes a summary to the publish target.
type Publisher interface {
	Publish(ctx context.Context, target model.PublishTarget, post publish.Post) publish.Result
}

// Enricher fetches the readable text of an article page.
type Enricher interface {
	Enrich(ctx context.Context, articleURL string) (string, error)
}

// Deps are the stores and services a pipeline run talks to. Enricher is
// optional.
type Deps struct {
	Feeds      FeedRegistry
	Target     TargetStore
	Ledger     Ledger
	Log        ProcessingLog
	Fetcher    Fetcher
	Summarizer Summarizer
	Publisher  Publisher
	Enricher   Enricher
}

// Options tune a pipeline run. Zero values fall back to defaults.
type Options struct {
	MinBodyLength    int
	EnrichBelow      int
	FetchTimeout     time.Duration
	SummarizeTimeout time.Duration
	PublishTimeout   time.Duration
	PublishStatus    string
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MinBodyLength <= 0 {
		o.MinBodyLength = 50
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 20 * time.Second
	}
	if o.SummarizeTimeout <= 0 {
		o.SummarizeTimeout = 120 * time.Second
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 30 * time.Second
	}
	if o.PublishStatus == "" {
		o.PublishStatus = "publish"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Result is the outcome of one run. Entries holds the log entries written
// during the run, with only the final entry kept per article.
type Result struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Entries []model.LogEntry `json:"newLogEntries"`
}

// Pipeline runs fetch → dedupe → summarize → publish over all feeds.
type Pipeline struct {
	deps Deps
	opts Options
}

// New creates a new pipeline.
func New(deps Deps, opts Options) *Pipeline {
	return &Pipeline{deps: deps, opts: opts.withDefaults()}
}

// run holds the mutable state of a single invocation.
type run struct {
	*Pipeline
	target   *model.PublishTarget
	seen     map[string]struct{}
	entries  []model.LogEntry
	newItems int
}

// Run processes every configured feed once.
func (p *Pipeline) Run(ctx context.Context) *Result {
	feeds, err := p.deps.Feeds.ListFeeds(ctx)
	if err != nil {
		log.Printf("Error loading feeds: %v", err)
		return &Result{Message: fmt.Sprintf("Failed to load feeds: %v", err)}
	}
	target, err := p.deps.Target.GetPublishTarget(ctx)
	if err != nil {
		log.Printf("Error loading publish target: %v", err)
		return &Result{Message: fmt.Sprintf("Failed to load WordPress configuration: %v", err)}
	}
	seen, err := p.deps.Ledger.ProcessedGUIDs(ctx)
	if err != nil {
		log.Printf("Error loading processed articles: %v", err)
		return &Result{Message: fmt.Sprintf("Failed to load processed articles: %v", err)}
	}
	if seen == nil {
		seen = make(map[string]struct{})
	}

	r := &run{Pipeline: p, target: target, seen: seen}

	suffix := ""
	if target == nil {
		r.record(ctx, model.LogEntry{
			ArticleGUID:  guidNoTarget,
			ArticleTitle: "WordPress Configuration Info",
			FeedURL:      "N/A",
			Status:       model.StatusPending,
			ErrorMessage: "WordPress configuration not found. Articles will be summarized but not posted to WordPress.",
		})
		suffix = publishSkipSuffix
	}

	if len(feeds) == 0 {
		r.record(ctx, model.LogEntry{
			ArticleGUID:  guidNoFeeds,
			ArticleTitle: "No Feeds",
			FeedURL:      "N/A",
			Status:       model.StatusError,
			ErrorMessage: "No RSS feeds configured. Please add feeds to process.",
		})
		return &Result{Message: "No RSS feeds configured." + suffix, Entries: r.entries}
	}

	for _, feed := range feeds {
		r.processFeed(ctx, feed)
	}

	if r.newItems == 0 {
		r.record(ctx, model.LogEntry{
			ArticleGUID:  guidNoNewArticles,
			ArticleTitle: "No New Articles",
			FeedURL:      "N/A",
			Status:       model.StatusPending,
			ErrorMessage: "No new articles found in configured feeds.",
		})
		return &Result{
			Success: true,
			Message: "Processing complete. No new articles found." + suffix,
			Entries: r.entries,
		}
	}

	log.Printf("Run complete: %d feeds, %d new articles", len(feeds), r.newItems)
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Processing complete. Checked %d feeds. Processed %d new articles.", len(feeds), r.newItems) + suffix,
		Entries: r.entries,
	}
}

func (r *run) processFeed(ctx context.Context, feed model.FeedSource) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	items, err := r.deps.Fetcher.Fetch(fetchCtx, feed.URL)
	cancel()
	if err != nil {
		log.Printf("Error processing feed %s: %v", feed.URL, err)
		r.record(ctx, model.LogEntry{
			ArticleGUID:  guidFeedError + feed.ID,
			ArticleTitle: "Error processing feed: " + feed.DisplayName(),
			FeedURL:      feed.URL,
			Status:       model.StatusError,
			ErrorMessage: err.Error(),
		})
		return
	}

	now := r.opts.Now().UTC()
	feed.LastFetchedAt = &now
	if err := r.deps.Feeds.UpdateFeed(ctx, feed); err != nil {
		log.Printf("Error updating feed %s: %v", feed.ID, err)
	}

	for _, item := range items {
		guid := item.Identifier()
		if guid == "" {
			continue
		}
		if _, ok := r.seen[guid]; ok {
			continue
		}

		r.newItems++
		r.processItem(ctx, feed, item, guid)

		r.seen[guid] = struct{}{}
		// A terminal outcome is recorded even when the caller gave up.
		if err := r.deps.Ledger.AddProcessedGUID(context.WithoutCancel(ctx), guid); err != nil {
			log.Printf("Error recording processed article %s: %v", guid, err)
		}
	}
}

func (r *run) processItem(ctx context.Context, feed model.FeedSource, item model.ArticleItem, guid string) {
	title := item.Title
	if title == "" {
		title = untitledArticle
	}
	entry := func(status model.LogStatus) model.LogEntry {
		return model.LogEntry{
			ArticleGUID:  guid,
			ArticleTitle: title,
			FeedURL:      feed.URL,
			Status:       status,
		}
	}

	text := r.resolveText(ctx, item)
	if utf8.RuneCountInString(text) < r.opts.MinBodyLength {
		e := entry(model.StatusUnsuitable)
		e.IsSuitable = model.Bool(false)
		e.ErrorMessage = "Article content too short for summarization."
		r.record(ctx, e)
		return
	}

	sumCtx, cancel := context.WithTimeout(ctx, r.opts.SummarizeTimeout)
	res, err := r.deps.Summarizer.Summarize(sumCtx, text)
	cancel()
	if err != nil {
		log.Printf("Summarization failed for %s: %v", guid, err)
		e := entry(model.StatusError)
		e.ErrorMessage = "Summarization failed: " + err.Error()
		r.record(ctx, e)
		return
	}

	if !res.IsSuitable || res.Summary == "" {
		e := entry(model.StatusUnsuitable)
		e.IsSuitable = model.Bool(res.IsSuitable)
		e.Summary = res.Summary
		if res.IsSuitable {
			e.ErrorMessage = "AI deemed content suitable but failed to produce summary."
		} else {
			e.ErrorMessage = "AI deemed content unsuitable for summarization."
		}
		r.record(ctx, e)
		return
	}

	summarized := entry(model.StatusSummarized)
	summarized.Summary = res.Summary
	summarized.IsSuitable = model.Bool(true)
	r.record(ctx, summarized)

	if r.target == nil {
		return
	}

	postTitle := item.Title
	if postTitle == "" {
		postTitle = untitledPost
	}
	pubCtx, cancel := context.WithTimeout(ctx, r.opts.PublishTimeout)
	pr := r.deps.Publisher.Publish(pubCtx, *r.target, publish.Post{
		Title:   postTitle,
		Content: res.Summary,
		Status:  r.opts.PublishStatus,
	})
	cancel()

	final := entry(model.StatusPosted)
	final.Summary = res.Summary
	final.IsSuitable = model.Bool(true)
	if pr.Success {
		final.PostedToWordPress = model.Bool(true)
		final.PublishedURL = pr.PostURL
		log.Printf("Posted %q to %s", postTitle, pr.PostURL)
	} else {
		final.Status = model.StatusError
		final.PostedToWordPress = model.Bool(false)
		final.ErrorMessage = "WordPress posting failed: " + pr.Error
		log.Printf("Publishing %s failed: %s", guid, pr.Error)
	}
	r.supersede(ctx, final)
}

// resolveText picks the item text, replacing teasers with the article page
// when an enricher is configured.
func (r *run) resolveText(ctx context.Context, item model.ArticleItem) string {
	text := item.SummarizableText()
	if r.deps.Enricher == nil || item.Link == "" {
		return text
	}
	if utf8.RuneCountInString(text) > r.opts.EnrichBelow {
		return text
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()
	full, err := r.deps.Enricher.Enrich(fetchCtx, item.Link)
	if err != nil {
		log.Printf("Full-text fetch failed for %s: %v", item.Link, err)
		return text
	}
	if utf8.RuneCountInString(full) > utf8.RuneCountInString(text) {
		return full
	}
	return text
}

// record appends entry to storage and to the run's batch. A storage failure
// is logged; the entry still shows up in the result.
func (r *run) record(ctx context.Context, entry model.LogEntry) {
	r.entries = append(r.entries, r.store(ctx, entry))
}

// supersede stores entry and replaces the last batch entry with it. The
// replaced entry stays in storage.
func (r *run) supersede(ctx context.Context, entry model.LogEntry) {
	stored := r.store(ctx, entry)
	if n := len(r.entries); n > 0 && r.entries[n-1].ArticleGUID == entry.ArticleGUID {
		r.entries[n-1] = stored
		return
	}
	r.entries = append(r.entries, stored)
}

func (r *run) store(ctx context.Context, entry model.LogEntry) model.LogEntry {
	stored, err := r.deps.Log.AppendLog(context.WithoutCancel(ctx), entry)
	if err != nil {
		log.Printf("Error writing log entry for %s: %v", entry.ArticleGUID, err)
		entry.Timestamp = r.opts.Now().UTC()
		return entry
	}
	return stored
}
