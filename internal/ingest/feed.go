package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/fetch"
)

// FeedSource reads the site's RSS or Atom feed. Items carrying both a
// title and a description need no further fetch.
type FeedSource struct {
	URL string
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Resolve(ctx context.Context, f *fetch.Fetcher) ([]Entry, error) {
	body, err := f.Get(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return parseFeed(s.URL, body)
}

func parseFeed(feedURL string, body []byte) ([]Entry, error) {
	base, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed URL: %w", err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := item.Link
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0]
		}
		if strings.TrimSpace(link) == "" {
			continue
		}
		loc, err := resolveLocation(base, link)
		if err != nil || loc == "" {
			continue
		}

		title := article.CollapseSpace(item.Title)
		summary := htmlToText(item.Description)
		if summary == "" {
			summary = htmlToText(item.Content)
		}
		entries = append(entries, Entry{
			Location: loc,
			Title:    title,
			Summary:  summary,
			Complete: title != "" && summary != "",
		})
	}
	return entries, nil
}

// htmlToText reduces an HTML fragment to its collapsed text content.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return article.CollapseSpace(fragment)
	}
	return article.CollapseSpace(doc.Text())
}
