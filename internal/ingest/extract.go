package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/fetch"
)

// Selectors locate title and summary inside an article page.
type Selectors struct {
	Title   string
	Summary string
}

// SelectorsV1 matches the markup produced by the site generator.
var SelectorsV1 = Selectors{Title: "h1", Summary: ".madv p"}

const defaultSummaryMaxLength = 150

// Extractor fetches article pages and pulls title and summary out of them.
type Extractor struct {
	fetcher    *fetch.Fetcher
	selectors  Selectors
	summaryMax int
}

func NewExtractor(f *fetch.Fetcher, sel Selectors, summaryMax int) *Extractor {
	if sel.Title == "" {
		sel.Title = SelectorsV1.Title
	}
	if sel.Summary == "" {
		sel.Summary = SelectorsV1.Summary
	}
	if summaryMax <= 0 {
		summaryMax = defaultSummaryMaxLength
	}
	return &Extractor{fetcher: f, selectors: sel, summaryMax: summaryMax}
}

// Extract always returns a usable record. On failure it is the placeholder
// record and err wraps ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, loc article.Location) (article.Record, error) {
	body, err := e.fetcher.Get(ctx, article.DisplayURL(loc))
	if err != nil {
		return article.Failed(loc), fmt.Errorf("%w: %s: %w", ErrExtraction, loc, err)
	}

	title, summary, err := ParseArticle(body, e.selectors, e.summaryMax)
	if err != nil {
		return article.Failed(loc), fmt.Errorf("%w: %s: %w", ErrExtraction, loc, err)
	}

	debuglog.WithFields(map[string]any{"location": loc}).Debugf("extracted %q", title)
	return article.New(loc, title, summary), nil
}

// ParseArticle reads the first match of each selector. A page where either
// match is missing or has no text is treated as unparsable.
func ParseArticle(body []byte, sel Selectors, summaryMax int) (title, summary string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parsing article: %w", err)
	}

	title = article.CollapseSpace(doc.Find(sel.Title).First().Text())
	if title == "" {
		return "", "", fmt.Errorf("no match for title selector %q", sel.Title)
	}

	summary = article.CollapseSpace(doc.Find(sel.Summary).First().Text())
	if summary == "" {
		return "", "", fmt.Errorf("no match for summary selector %q", sel.Summary)
	}
	return title, article.Truncate(summary, summaryMax), nil
}
