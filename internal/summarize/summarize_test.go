package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockProvider struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (m *mockProvider) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

var longText = strings.Repeat("Go makes it easy to build simple, reliable software. ", 10)

func TestSummarizeTooShortSkipsModel(t *testing.T) {
	mock := &mockProvider{response: `{"is_suitable": true, "summary": "x"}`}
	s := NewSummarizer(mock)

	r, err := s.Summarize(context.Background(), "short text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsSuitable || r.Summary != "" {
		t.Errorf("expected unsuitable empty result, got %+v", r)
	}
	if mock.calls != 0 {
		t.Errorf("expected no provider calls, got %d", mock.calls)
	}
}

func TestSummarizeTooLongSkipsModel(t *testing.T) {
	mock := &mockProvider{}
	s := NewSummarizer(mock)

	r, _ := s.Summarize(context.Background(), strings.Repeat("a", 10000))
	if r.IsSuitable {
		t.Error("expected text at the upper bound to be unsuitable")
	}
	if mock.calls != 0 {
		t.Errorf("expected no provider calls, got %d", mock.calls)
	}
}

func TestSuitableBounds(t *testing.T) {
	s := NewSummarizer(nil)
	tests := []struct {
		n    int
		want bool
	}{
		{200, false},
		{201, true},
		{9999, true},
		{10000, false},
	}
	for _, tt := range tests {
		if got := s.Suitable(strings.Repeat("x", tt.n)); got != tt.want {
			t.Errorf("Suitable(len=%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestSummarizeJSON(t *testing.T) {
	mock := &mockProvider{response: "```json\n{\"is_suitable\": true, \"summary\": \"  A short summary.  \"}\n```"}
	s := NewSummarizer(mock)

	r, err := s.Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsSuitable {
		t.Error("expected suitable")
	}
	if r.Summary != "A short summary." {
		t.Errorf("expected trimmed summary, got %q", r.Summary)
	}
	if !strings.Contains(mock.prompt, "Go makes it easy") {
		t.Error("expected article text in prompt")
	}
}

func TestSummarizeModelDeclines(t *testing.T) {
	mock := &mockProvider{response: `{"is_suitable": false, "summary": "ignored"}`}
	r, err := NewSummarizer(mock).Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsSuitable || r.Summary != "" {
		t.Errorf("expected unsuitable empty result, got %+v", r)
	}
}

func TestSummarizePlainTextReply(t *testing.T) {
	mock := &mockProvider{response: "Just a plain summary."}
	r, err := NewSummarizer(mock).Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsSuitable || r.Summary != "Just a plain summary." {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestSummarizeEmptyReply(t *testing.T) {
	mock := &mockProvider{response: "  "}
	r, err := NewSummarizer(mock).Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsSuitable || r.Summary != "" {
		t.Errorf("expected suitable result without summary, got %+v", r)
	}
}

func TestSummarizeMissingSuitabilityDefaultsToSuitable(t *testing.T) {
	mock := &mockProvider{response: "```json\n{\"summary\": \" Fenced. \"}\n```"}
	r, err := NewSummarizer(mock).Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsSuitable || r.Summary != "Fenced." {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestSummarizeProviderError(t *testing.T) {
	mock := &mockProvider{err: errors.New("connection refused")}
	_, err := NewSummarizer(mock).Summarize(context.Background(), longText)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestSummarizeNoProvider(t *testing.T) {
	_, err := NewSummarizer(nil).Summarize(context.Background(), longText)
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestLengthBoundsOption(t *testing.T) {
	mock := &mockProvider{response: `{"is_suitable": true, "summary": "ok"}`}
	s := NewSummarizer(mock, WithLengthBounds(5, 20), WithMaxTokens(64))

	r, err := s.Summarize(context.Background(), "ten chars!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Summary != "ok" {
		t.Errorf("expected summary with custom bounds, got %+v", r)
	}
	if s.maxTokens != 64 {
		t.Errorf("expected maxTokens 64, got %d", s.maxTokens)
	}
}
