package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pders01/shelf/internal/fetch"
	"github.com/pders01/shelf/internal/validation"
)

// ListingSource scrapes an HTML directory listing whose subdirectories are
// article locations.
type ListingSource struct {
	URL string
}

func (s *ListingSource) Name() string { return "listing" }

func (s *ListingSource) Resolve(ctx context.Context, f *fetch.Fetcher) ([]Entry, error) {
	listingURL := strings.TrimRight(s.URL, "/") + "/"
	body, err := f.Get(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return parseListing(listingURL, body)
}

func parseListing(listingURL string, body []byte) ([]Entry, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("parsing listing URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	var entries []Entry
	// Header rows use th cells and have no td to match.
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}
		href, ok := cell.Find("a").First().Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.HasSuffix(href, "/") || validation.HasTraversal(href) {
			return
		}
		loc, err := resolveLocation(base, href)
		if err != nil || loc == "" {
			return
		}
		entries = append(entries, Entry{Location: loc})
	})
	return entries, nil
}
