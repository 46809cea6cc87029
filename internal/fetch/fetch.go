package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// minExtracted is the shortest extracted text considered a real article.
const minExtracted = 100

// Enricher fetches the full text of an article page via HTTP + readability
// extraction. It is used when a feed only carries a teaser.
type Enricher struct {
	client    *http.Client
	userAgent string
}

// NewEnricher creates a new page enricher.
func NewEnricher(timeout time.Duration, userAgent string) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = "FeedPress/1.0 (feed summarizer)"
	}
	return &Enricher{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Enrich returns the readable text of the page at articleURL. An empty
// string with a nil error means nothing useful could be extracted.
func (e *Enricher) Enrich(ctx context.Context, articleURL string) (string, error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid article URL %q", articleURL)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &HTTPError{Code: resp.StatusCode}
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > minExtracted {
		return text, nil
	}
	return "", nil
}

// HTTPError is returned for 4xx/5xx article responses.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}
