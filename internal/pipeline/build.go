package pipeline

import (
	"github.com/TobiSchelling/FeedPress/internal/collect"
	"github.com/TobiSchelling/FeedPress/internal/config"
	"github.com/TobiSchelling/FeedPress/internal/fetch"
	"github.com/TobiSchelling/FeedPress/internal/llm"
	"github.com/TobiSchelling/FeedPress/internal/publish"
	"github.com/TobiSchelling/FeedPress/internal/summarize"
)

// Store is the persistent state a configured pipeline needs besides the
// ledger. *database.DB implements it.
type Store interface {
	FeedRegistry
	TargetStore
	ProcessingLog
}

// FromConfig wires the production fetcher, summarizer and publisher.
func FromConfig(cfg *config.Config, store Store, ledger Ledger) *Pipeline {
	summ := cfg.Summarization
	provider := llm.CreateProvider(summ)

	deps := Deps{
		Feeds:   store,
		Target:  store,
		Ledger:  ledger,
		Log:     store,
		Fetcher: collect.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxItems),
		Summarizer: summarize.NewSummarizer(provider,
			summarize.WithLengthBounds(summ.MinLength, summ.MaxLength),
			summarize.WithMaxTokens(summ.MaxTokens),
		),
		Publisher: publish.NewClient(cfg.Publish.Timeout, cfg.Publish.RenderMarkdown),
	}
	if cfg.Fetch.FullText {
		deps.Enricher = fetch.NewEnricher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	}

	return New(deps, Options{
		MinBodyLength:    cfg.Pipeline.MinBodyLength,
		EnrichBelow:      summ.MinLength,
		FetchTimeout:     cfg.Fetch.Timeout,
		SummarizeTimeout: summ.Timeout,
		PublishTimeout:   cfg.Publish.Timeout,
		PublishStatus:    cfg.Publish.Status,
	})
}
