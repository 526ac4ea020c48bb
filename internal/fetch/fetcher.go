// Package fetch retrieves source documents and article pages over HTTP,
// revalidating against the session page cache when one is attached.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/metrics"
	"github.com/pders01/shelf/internal/storage"
	"github.com/pders01/shelf/internal/validation"
)

const (
	defaultUserAgent = "shelf/1.0 (static article index; github.com/pders01/shelf)"
	defaultTimeout   = 30 * time.Second
	maxBodySize      = 16 << 20
	acceptHeader     = "text/html, application/json, text/plain, application/rss+xml, application/atom+xml, */*;q=0.8"
)

// Outcome labels reported to metrics.
const (
	OutcomeOK           = "ok"
	OutcomeNotModified  = "not_modified"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeInvalidURL   = "invalid_url"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	validator *validation.SourceURLValidator
	store     *storage.Store
	metrics   *metrics.Metrics
	group     singleflight.Group
}

type Option func(*Fetcher)

// WithStore attaches a page cache used for conditional requests.
func WithStore(store *storage.Store) Option {
	return func(f *Fetcher) { f.store = store }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithClient replaces the HTTP client, keeping the configured timeout unless
// the client sets its own.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c.Timeout == 0 {
			c.Timeout = f.client.Timeout
		}
		f.client = c
	}
}

func NewFetcher(cfg *config.Config, opts ...Option) *Fetcher {
	timeout := defaultTimeout
	userAgent := defaultUserAgent
	validator := validation.NewSourceURLValidator()
	if cfg != nil {
		if cfg.Fetch.HTTPTimeout > 0 {
			timeout = cfg.Fetch.HTTPTimeout
		}
		if cfg.Fetch.UserAgent != "" {
			userAgent = cfg.Fetch.UserAgent
		}
		if cfg.Fetch.AllowPrivate {
			validator = validation.NewPermissiveSourceURLValidator()
		}
	}

	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		validator: validator,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the body of rawURL. Concurrent calls for the same URL share
// one request, which outlives any single caller's cancellation and is
// bounded by the client timeout. The returned slice must not be modified.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	ch := f.group.DoChan(rawURL, func() (any, error) {
		return f.get(context.WithoutCancel(ctx), rawURL)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	log := debuglog.WithFields(map[string]any{"url": rawURL})

	u, err := f.validator.Validate(rawURL)
	if err != nil {
		f.metrics.ObserveFetch(OutcomeInvalidURL, time.Since(start))
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	cached := f.cachedPage(rawURL)
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.ObserveFetch(OutcomeNetworkError, time.Since(start))
		log.Debugf("fetch failed: %v", err)
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		f.metrics.ObserveFetch(OutcomeNotModified, time.Since(start))
		log.Debugf("not modified, using cached body")
		return cached.Body, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.metrics.ObserveFetch(OutcomeHTTPError, time.Since(start))
		log.Debugf("HTTP status %d", resp.StatusCode)
		f.forget(rawURL, cached)
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		f.metrics.ObserveFetch(OutcomeNetworkError, time.Since(start))
		return nil, fmt.Errorf("reading response: %w", err)
	}

	f.metrics.ObserveFetch(OutcomeOK, time.Since(start))
	f.remember(rawURL, resp, body)
	return body, nil
}

func (f *Fetcher) cachedPage(rawURL string) *storage.Page {
	if f.store == nil {
		return nil
	}
	page, err := f.store.GetPage(rawURL)
	if err != nil || !page.HasValidators() {
		return nil
	}
	return page
}

func (f *Fetcher) remember(rawURL string, resp *http.Response, body []byte) {
	if f.store == nil {
		return
	}
	page := &storage.Page{
		URL:          rawURL,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  resp.Header.Get("Content-Type"),
		Body:         body,
		FetchedAt:    time.Now(),
	}
	if !page.HasValidators() {
		return
	}
	if err := f.store.SavePage(page); err != nil {
		debuglog.Warnf("caching %s: %v", rawURL, err)
	}
}

// forget evicts a cached page the server no longer serves.
func (f *Fetcher) forget(rawURL string, cached *storage.Page) {
	if cached == nil {
		return
	}
	if err := f.store.DeletePage(rawURL); err != nil {
		debuglog.Warnf("evicting %s: %v", rawURL, err)
	}
}
