// Package ingest resolves a configured source into article locations and
// turns each location into a display-ready record.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/fetch"
	"github.com/pders01/shelf/internal/validation"
)

var (
	// ErrSourceUnavailable marks a failure of the top-level source fetch.
	// It is terminal for the widget.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrExtraction marks a per-article failure. It never escapes Ingest.
	ErrExtraction = errors.New("article extraction failed")
)

// SourceError wraps the cause of a failed source resolution.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// Entry is one resolved location. Complete entries already carry their
// title and summary and skip the article fetch.
type Entry struct {
	Location article.Location
	Title    string
	Summary  string
	Complete bool
}

// fallback is the record kept when enrichment fails. Whatever the source
// already knew about the entry replaces the matching placeholder.
func (e Entry) fallback() article.Record {
	rec := article.Failed(e.Location)
	if e.Title != "" {
		rec.Title = e.Title
	}
	if e.Summary != "" {
		rec.Summary = e.Summary
	}
	return rec
}

// Source resolves itself into an ordered list of entries.
type Source interface {
	Name() string
	Resolve(ctx context.Context, f *fetch.Fetcher) ([]Entry, error)
}

// Dedupe drops later duplicates, keeping first-seen order.
func Dedupe(entries []Entry) []Entry {
	seen := make(map[article.Location]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Location == "" || seen[e.Location] {
			continue
		}
		seen[e.Location] = true
		out = append(out, e)
	}
	return out
}

// FromConfig builds the Source selected by cfg.Source.Kind.
func FromConfig(cfg *config.Config) (Source, error) {
	base := validation.NormalizeBaseURL(cfg.Source.BaseURL)

	switch cfg.Source.Kind {
	case config.SourceIndex:
		u, err := resolveAgainst(base, cfg.Source.Index)
		if err != nil {
			return nil, err
		}
		return &IndexSource{URL: u}, nil
	case config.SourceManifest:
		urls := make([]string, 0, len(cfg.Source.Manifests))
		for _, m := range cfg.Source.Manifests {
			u, err := resolveAgainst(base, m)
			if err != nil {
				return nil, err
			}
			urls = append(urls, u)
		}
		return &ManifestSource{URLs: urls}, nil
	case config.SourceListing:
		u, err := resolveAgainst(base, cfg.Source.Listing)
		if err != nil {
			return nil, err
		}
		return &ListingSource{URL: u}, nil
	case config.SourceFeed:
		u, err := resolveAgainst(base, cfg.Source.Feed)
		if err != nil {
			return nil, err
		}
		return &FeedSource{URL: u}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// resolveAgainst resolves ref relative to base; absolute refs pass through.
func resolveAgainst(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty source reference")
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", ref, err)
	}
	if refURL.IsAbs() {
		return refURL.String(), nil
	}
	if base == "" {
		return "", fmt.Errorf("relative reference %q needs source.base_url", ref)
	}
	baseURL, err := url.Parse(base + "/")
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// resolveLocation resolves ref against the document it was found in.
func resolveLocation(doc *url.URL, ref string) (article.Location, error) {
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	resolved := doc.ResolveReference(refURL)
	resolved.Fragment = ""
	resolved.RawQuery = ""
	return article.NewLocation(resolved.String()), nil
}

// FormatTitle turns a slug such as "plugin-search" into "Plugin Search".
func FormatTitle(slug string) string {
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")
	words := strings.Fields(slug)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// slugOf returns the last path segment of a location.
func slugOf(loc article.Location) string {
	u, err := url.Parse(string(loc))
	if err != nil {
		return path.Base(string(loc))
	}
	if decoded, err := url.PathUnescape(path.Base(u.Path)); err == nil {
		return decoded
	}
	return path.Base(u.Path)
}
