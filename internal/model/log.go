package model

import "time"

// LogStatus classifies a processing log entry.
type LogStatus string

const (
	StatusPending    LogStatus = "pending" // informational, not an article outcome
	StatusUnsuitable LogStatus = "unsuitable"
	StatusSummarized LogStatus = "summarized"
	StatusPosted     LogStatus = "posted"
	StatusError      LogStatus = "error"
)

// LogRetention is the number of log entries kept in storage.
const LogRetention = 100

// LogEntry records one outcome of a processing run. Entries are never
// modified after they are written.
type LogEntry struct {
	ID                string    `json:"id"`
	ArticleGUID       string    `json:"articleGuid"`
	ArticleTitle      string    `json:"articleTitle"`
	FeedURL           string    `json:"feedUrl"`
	Timestamp         time.Time `json:"timestamp"`
	Status            LogStatus `json:"status"`
	Summary           string    `json:"summary,omitempty"`
	IsSuitable        *bool     `json:"isSuitable,omitempty"`
	PostedToWordPress *bool     `json:"postedToWordPress,omitempty"`
	PublishedURL      string    `json:"publishedUrl,omitempty"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
}

// Bool returns a pointer to b, for the optional flags of a LogEntry.
func Bool(b bool) *bool { return &b }
