package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

// Post is the content pushed to the publishing endpoint.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// Result is the outcome of one publish attempt. Failures are reported in
// Error rather than as a Go error so callers can log them as outcomes.
type Result struct {
	Success bool
	PostURL string
	Error   string
}

// Client publishes posts through the WordPress REST API.
type Client struct {
	http           *http.Client
	renderMarkdown bool
	md             goldmark.Markdown
}

// NewClient creates a WordPress client. With renderMarkdown set, post
// content is converted from Markdown to HTML before it is sent.
func NewClient(timeout time.Duration, renderMarkdown bool) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:           &http.Client{Timeout: timeout},
		renderMarkdown: renderMarkdown,
		md:             goldmark.New(),
	}
}

// Publish creates a post on the target site.
func (c *Client) Publish(ctx context.Context, target model.PublishTarget, post Post) Result {
	if !target.Complete() {
		return Result{Error: "WordPress configuration is incomplete."}
	}

	if c.renderMarkdown {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(post.Content), &buf); err == nil {
			post.Content = buf.String()
		}
	}
	if post.Status == "" {
		post.Status = "publish"
	}

	data, err := json.Marshal(post)
	if err != nil {
		return Result{Error: fmt.Sprintf("encoding post: %v", err)}
	}

	endpoint := strings.TrimRight(target.SiteURL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return Result{Error: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(target.Username, target.Credential)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("WordPress request to %s failed: %v", endpoint, err)
		return Result{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Link    string `json:"link"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := payload.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return Result{Error: fmt.Sprintf("Failed to post to WordPress (Status %d): %s", resp.StatusCode, msg)}
	}

	return Result{Success: true, PostURL: payload.Link}
}
