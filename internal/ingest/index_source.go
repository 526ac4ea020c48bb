package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/fetch"
)

// IndexSource reads a pre-built JSON index whose entries already carry
// title and summary.
type IndexSource struct {
	URL string
}

type indexDocument struct {
	Results []indexEntry `json:"Results"`
}

// Keys decode case-insensitively; title/summary are accepted as aliases.
type indexEntry struct {
	Path    string `json:"Path"`
	Header  string `json:"Header"`
	Content string `json:"Content"`
	Title   string `json:"Title"`
	Summary string `json:"Summary"`
}

func (s *IndexSource) Name() string { return "index" }

func (s *IndexSource) Resolve(ctx context.Context, f *fetch.Fetcher) ([]Entry, error) {
	body, err := f.Get(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return parseIndex(s.URL, body)
}

func parseIndex(indexURL string, body []byte) ([]Entry, error) {
	var doc indexDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parsing index URL: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Results))
	for _, r := range doc.Results {
		if strings.TrimSpace(r.Path) == "" {
			continue
		}
		loc, err := resolveLocation(base, r.Path)
		if err != nil {
			continue
		}
		title := firstNonEmpty(r.Header, r.Title)
		if title == "" {
			title = FormatTitle(slugOf(loc))
		}
		entries = append(entries, Entry{
			Location: loc,
			Title:    article.CollapseSpace(title),
			Summary:  article.CollapseSpace(firstNonEmpty(r.Content, r.Summary)),
			Complete: true,
		})
	}
	return entries, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
