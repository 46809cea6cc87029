package model

import "strings"

// PublishTarget holds the WordPress endpoint and application password used
// to publish summaries. It is replaced as a whole on save.
type PublishTarget struct {
	SiteURL    string `json:"siteUrl" db:"site_url"`
	Username   string `json:"username" db:"username"`
	Credential string `json:"-" db:"credential"`
}

// NewPublishTarget validates all fields and returns either a complete target
// or a *ValidationError listing every invalid field.
func NewPublishTarget(siteURL, username, credential string) (PublishTarget, error) {
	t := PublishTarget{
		SiteURL:    strings.TrimSpace(siteURL),
		Username:   strings.TrimSpace(username),
		Credential: strings.TrimSpace(credential),
	}

	verr := &ValidationError{}
	if msg := checkHTTPURL(t.SiteURL); msg != "" {
		verr.Add("siteUrl", msg)
	}
	if t.Username == "" {
		verr.Add("username", "Username is required.")
	}
	if t.Credential == "" {
		verr.Add("credential", "Application Password is required.")
	}
	if verr.HasErrors() {
		return PublishTarget{}, verr
	}
	return t, nil
}

// Complete reports whether every field is set.
func (t PublishTarget) Complete() bool {
	return t.SiteURL != "" && t.Username != "" && t.Credential != ""
}
