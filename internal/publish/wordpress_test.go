package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

func TestPublishSuccess(t *testing.T) {
	var got Post
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/wp-json/wp/v2/posts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "editor" || pass != "app pass" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 7, "link": "https://blog.example.com/?p=7"}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, true)
	target := model.PublishTarget{SiteURL: srv.URL + "/", Username: "editor", Credential: "app pass"}
	res := c.Publish(context.Background(), target, Post{Title: "Hello", Content: "Some **bold** text"})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.PostURL != "https://blog.example.com/?p=7" {
		t.Errorf("unexpected post URL %q", res.PostURL)
	}
	if got.Title != "Hello" || got.Status != "publish" {
		t.Errorf("unexpected payload %+v", got)
	}
	if !strings.Contains(got.Content, "<strong>bold</strong>") {
		t.Errorf("expected rendered markdown, got %q", got.Content)
	}
}

func TestPublishRawContent(t *testing.T) {
	var got Post
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"link": "x"}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, false)
	target := model.PublishTarget{SiteURL: srv.URL, Username: "u", Credential: "p"}
	c.Publish(context.Background(), target, Post{Title: "T", Content: "**raw**", Status: "draft"})

	if got.Content != "**raw**" || got.Status != "draft" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestPublishErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"with message", http.StatusUnauthorized, `{"code": "rest_cannot_create", "message": "Sorry, you are not allowed."}`,
			"Failed to post to WordPress (Status 401): Sorry, you are not allowed."},
		{"without message", http.StatusInternalServerError, `oops`,
			"Failed to post to WordPress (Status 500): Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			target := model.PublishTarget{SiteURL: srv.URL, Username: "u", Credential: "p"}
			res := NewClient(5*time.Second, true).Publish(context.Background(), target, Post{Title: "T", Content: "c"})
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Error != tt.want {
				t.Errorf("got %q, want %q", res.Error, tt.want)
			}
		})
	}
}

func TestPublishIncompleteTarget(t *testing.T) {
	res := NewClient(0, true).Publish(context.Background(), model.PublishTarget{SiteURL: "https://x.example"}, Post{})
	if res.Success || res.Error != "WordPress configuration is incomplete." {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPublishTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	target := model.PublishTarget{SiteURL: url, Username: "u", Credential: "p"}
	res := NewClient(time.Second, true).Publish(context.Background(), target, Post{Title: "T"})
	if res.Success || res.Error == "" {
		t.Errorf("expected transport failure, got %+v", res)
	}
}
