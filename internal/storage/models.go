package storage

import (
	"time"
)

// Page is one cached HTTP response body with its validators.
type Page struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	ContentType  string    `json:"content_type"`
	Body         []byte    `json:"body"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// HasValidators reports whether a conditional request can be made for p.
func (p *Page) HasValidators() bool {
	return p.ETag != "" || p.LastModified != ""
}
