package main

import (
	"testing"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer title", 10, "this is..."},
		{"ünïcödé títle", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestEntryDetails(t *testing.T) {
	posted := model.LogEntry{PublishedURL: "https://x/1", Summary: "S"}
	if got := entryDetails(posted); got != "https://x/1" {
		t.Errorf("expected published URL, got %q", got)
	}

	failed := model.LogEntry{ErrorMessage: "boom", Summary: "S"}
	if got := entryDetails(failed); got != "boom" {
		t.Errorf("expected error message, got %q", got)
	}

	summarized := model.LogEntry{Summary: "line one\nline two"}
	if got := entryDetails(summarized); got != "line one line two" {
		t.Errorf("expected flattened summary, got %q", got)
	}
}
