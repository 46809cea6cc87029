package model

import (
	"net/url"
	"strings"
	"time"
)

// FeedSource is a configured syndication endpoint.
type FeedSource struct {
	ID            string     `json:"id" db:"id"`
	URL           string     `json:"url" db:"url"`
	Name          string     `json:"name,omitempty" db:"name"`
	LastFetchedAt *time.Time `json:"lastFetchedAt,omitempty" db:"last_fetched_at"`
}

// DisplayName returns the feed name, or its URL when no name was given.
func (f FeedSource) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.URL
}

// NewFeedSource validates the user-supplied fields of a feed. The ID is
// assigned by the registry when the feed is stored.
func NewFeedSource(rawURL, name string) (FeedSource, error) {
	rawURL = strings.TrimSpace(rawURL)
	verr := &ValidationError{}
	if msg := checkHTTPURL(rawURL); msg != "" {
		verr.Add("url", msg)
	}
	if verr.HasErrors() {
		return FeedSource{}, verr
	}
	return FeedSource{URL: rawURL, Name: strings.TrimSpace(name)}, nil
}

// ArticleItem is a single entry from a feed poll. It is never persisted.
type ArticleItem struct {
	GUID        string
	Title       string
	Link        string
	Body        string
	Snippet     string
	PublishedAt *time.Time
}

// Identifier returns the dedup key of the item: its GUID, else its link.
// An empty result means the item cannot be processed.
func (a ArticleItem) Identifier() string {
	if a.GUID != "" {
		return a.GUID
	}
	return a.Link
}

// SummarizableText picks the text handed to the summarizer.
func (a ArticleItem) SummarizableText() string {
	switch {
	case a.Body != "":
		return a.Body
	case a.Snippet != "":
		return a.Snippet
	default:
		return a.Title
	}
}

func checkHTTPURL(raw string) string {
	if raw == "" {
		return "URL is required."
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return "Invalid URL format."
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "Unsupported scheme: " + u.Scheme
	}
	return ""
}
