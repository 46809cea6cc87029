package summarize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/TobiSchelling/FeedPress/internal/llm"
)

const summarizePrompt = `You are an expert summarizer of online articles.

The article below has already passed a length check. Decide whether its topic can be
meaningfully summarized (news, analysis, tutorials and essays can; link dumps, job ads,
event listings and raw code generally cannot).

If it is suitable, write a concise summary of three to five sentences in Markdown.
If it is not suitable, set "is_suitable" to false and leave "summary" empty.

Article:
%s

Respond with ONLY this JSON:
{
    "is_suitable": true or false,
    "summary": "The summary, or an empty string"
}`

// ErrNoProvider is returned when no LLM provider could be configured.
var ErrNoProvider = errors.New("no LLM provider available")

// Result is the outcome of a summarization attempt.
type Result struct {
	Summary    string
	IsSuitable bool
}

// Summarizer decides whether article text is worth condensing and asks an
// LLM for the summary.
type Summarizer struct {
	provider  llm.Provider
	minLength int
	maxLength int
	maxTokens int
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLengthBounds sets the exclusive character bounds of the suitability check.
func WithLengthBounds(minLen, maxLen int) Option {
	return func(s *Summarizer) {
		s.minLength = minLen
		s.maxLength = maxLen
	}
}

// WithMaxTokens sets the generation budget passed to the provider.
func WithMaxTokens(n int) Option {
	return func(s *Summarizer) { s.maxTokens = n }
}

// NewSummarizer creates a summarizer. A nil provider makes every suitable
// article fail with ErrNoProvider.
func NewSummarizer(provider llm.Provider, opts ...Option) *Summarizer {
	s := &Summarizer{
		provider:  provider,
		minLength: 200,
		maxLength: 10000,
		maxTokens: 512,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suitable reports whether text falls inside the length window.
func (s *Summarizer) Suitable(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > s.minLength && n < s.maxLength
}

// Summarize returns a summary of body. Text outside the length window is
// reported unsuitable without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, body string) (Result, error) {
	if !s.Suitable(body) {
		return Result{}, nil
	}
	if s.provider == nil {
		return Result{}, ErrNoProvider
	}

	responseText, err := s.provider.Generate(ctx, fmt.Sprintf(summarizePrompt, body), s.maxTokens)
	if err != nil {
		return Result{}, err
	}

	var reply struct {
		IsSuitable *bool  `json:"is_suitable"`
		Summary    string `json:"summary"`
	}
	switch err := llm.DecodeReply(responseText, &reply); {
	case errors.Is(err, llm.ErrEmptyReply):
		log.Println("LLM returned an empty reply")
		return Result{IsSuitable: true}, nil
	case errors.Is(err, llm.ErrNotJSON):
		// Plain-text reply: take it as the summary.
		log.Printf("LLM reply was not JSON, using raw text as summary: %v", err)
		return Result{Summary: strings.TrimSpace(responseText), IsSuitable: true}, nil
	}

	if reply.IsSuitable != nil && !*reply.IsSuitable {
		return Result{}, nil
	}
	return Result{Summary: strings.TrimSpace(reply.Summary), IsSuitable: true}, nil
}
