package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEnrichExtractsArticle(t *testing.T) {
	paragraph := strings.Repeat("Readable article text about feeds and summaries. ", 8)
	page := fmt.Sprintf(`<html><head><title>Post</title></head><body>
<nav>Home | About</nav>
<article><h1>Post</h1><p>%s</p><p>%s</p></article>
</body></html>`, paragraph, paragraph)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	text, err := NewEnricher(5*time.Second, "").Enrich(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Readable article text") {
		t.Errorf("expected article text, got %q", text)
	}
}

func TestEnrichShortPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>tiny</p></body></html>")
	}))
	defer srv.Close()

	text, err := NewEnricher(5*time.Second, "").Enrich(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestEnrichHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewEnricher(5*time.Second, "").Enrich(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected HTTPError 403, got %v", err)
	}
}

func TestEnrichInvalidURL(t *testing.T) {
	if _, err := NewEnricher(0, "").Enrich(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
