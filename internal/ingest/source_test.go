package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/fetch"
)

func locations(entries []Entry) []article.Location {
	out := make([]article.Location, len(entries))
	for i, e := range entries {
		out[i] = e.Location
	}
	return out
}

func TestDedupe(t *testing.T) {
	entries := []Entry{
		{Location: "http://h/a"},
		{Location: "http://h/b"},
		{Location: "http://h/b", Title: "second copy"},
		{Location: "http://h/c"},
		{Location: ""},
	}

	got := Dedupe(entries)

	assert.Equal(t, []article.Location{"http://h/a", "http://h/b", "http://h/c"}, locations(got))
	assert.Empty(t, got[1].Title, "first occurrence wins")
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plugin-search", "Plugin Search"},
		{"getting_started", "Getting Started"},
		{"single", "Single"},
		{"", ""},
		{"über-cool", "Über Cool"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTitle(tt.in))
		})
	}
}

func TestSourceError(t *testing.T) {
	cause := &fetch.HTTPError{URL: "http://h/list", StatusCode: 503}
	err := error(&SourceError{Source: "listing", Err: cause})

	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	assert.Equal(t, 503, fetch.StatusCode(err))
	assert.Contains(t, err.Error(), "listing")
	assert.Contains(t, err.Error(), "HTTP error: 503")
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *config.Config)
		check   func(t *testing.T, s Source)
		wantErr bool
	}{
		{
			name: "listing relative to base",
			modify: func(c *config.Config) {
				c.Source.Kind = config.SourceListing
				c.Source.BaseURL = "https://docs.example.com/"
				c.Source.Listing = "/articles"
			},
			check: func(t *testing.T, s Source) {
				require.IsType(t, &ListingSource{}, s)
				assert.Equal(t, "https://docs.example.com/articles", s.(*ListingSource).URL)
			},
		},
		{
			name: "index absolute",
			modify: func(c *config.Config) {
				c.Source.Kind = config.SourceIndex
				c.Source.Index = "https://cdn.example.com/index.json"
			},
			check: func(t *testing.T, s Source) {
				require.IsType(t, &IndexSource{}, s)
				assert.Equal(t, "https://cdn.example.com/index.json", s.(*IndexSource).URL)
			},
		},
		{
			name: "manifests keep order",
			modify: func(c *config.Config) {
				c.Source.Kind = config.SourceManifest
				c.Source.BaseURL = "https://docs.example.com"
				c.Source.Manifests = []string{"/a/list.txt", "b/list.txt"}
			},
			check: func(t *testing.T, s Source) {
				require.IsType(t, &ManifestSource{}, s)
				assert.Equal(t, []string{
					"https://docs.example.com/a/list.txt",
					"https://docs.example.com/b/list.txt",
				}, s.(*ManifestSource).URLs)
			},
		},
		{
			name: "feed",
			modify: func(c *config.Config) {
				c.Source.Kind = config.SourceFeed
				c.Source.BaseURL = "https://docs.example.com"
				c.Source.Feed = "/feed.xml"
			},
			check: func(t *testing.T, s Source) {
				require.IsType(t, &FeedSource{}, s)
				assert.Equal(t, "feed", s.Name())
			},
		},
		{
			name: "unknown kind",
			modify: func(c *config.Config) {
				c.Source.Kind = "gopher"
			},
			wantErr: true,
		},
		{
			name: "empty reference",
			modify: func(c *config.Config) {
				c.Source.Kind = config.SourceIndex
				c.Source.Index = "  "
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.TestConfig()
			tt.modify(cfg)
			s, err := FromConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestIndexSource_Resolve(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/search/index.json": `{"Results":[
			{"Path":"/articles/alpha/","Header":"Alpha","Content":"All about alpha"},
			{"Path":"/articles/beta","Header":"","Content":"Beta body"},
			{"Path":"","Header":"skipped","Content":"no path"}
		]}`,
		"/lower/index.json": `{"results":[{"path":"../articles/gamma/index.html","title":"Gamma","summary":"g"}]}`,
	})

	entries, err := (&IndexSource{URL: site.URL + "/search/index.json"}).Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, article.Location(site.URL+"/articles/alpha"), entries[0].Location)
	assert.Equal(t, "Alpha", entries[0].Title)
	assert.Equal(t, "All about alpha", entries[0].Summary)
	assert.True(t, entries[0].Complete)
	assert.Equal(t, "Beta", entries[1].Title, "missing header falls back to the slug")

	entries, err = (&IndexSource{URL: site.URL + "/lower/index.json"}).Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, article.Location(site.URL+"/articles/gamma"), entries[0].Location)
	assert.Equal(t, "Gamma", entries[0].Title)
	assert.Equal(t, "g", entries[0].Summary)
}

func TestIndexSource_InvalidJSON(t *testing.T) {
	site := newTestSite(t, map[string]string{"/index.json": `{"Results": [`})

	_, err := (&IndexSource{URL: site.URL + "/index.json"}).Resolve(context.Background(), newTestFetcher())
	assert.Error(t, err)
}

func TestManifestSource_Resolve(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/guides/list.txt":    "# guides\nintro\n\n  setup/  \n/articles/shared\n",
		"/reference/list.txt": "api\nhttps://elsewhere.example.com/remote\n",
	})

	src := &ManifestSource{URLs: []string{
		site.URL + "/guides/list.txt",
		site.URL + "/reference/list.txt",
	}}
	entries, err := src.Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)

	assert.Equal(t, []article.Location{
		article.Location(site.URL + "/guides/intro"),
		article.Location(site.URL + "/guides/setup"),
		article.Location(site.URL + "/articles/shared"),
		article.Location(site.URL + "/reference/api"),
		"https://elsewhere.example.com/remote",
	}, locations(entries))
	for _, e := range entries {
		assert.False(t, e.Complete)
	}
}

func TestManifestSource_AnyFailureFails(t *testing.T) {
	site := newTestSite(t, map[string]string{"/ok/list.txt": "a\n"})

	src := &ManifestSource{URLs: []string{site.URL + "/ok/list.txt", site.URL + "/missing/list.txt"}}
	_, err := src.Resolve(context.Background(), newTestFetcher())
	require.Error(t, err)
	assert.Equal(t, 404, fetch.StatusCode(err))
}

func TestListingSource_Resolve(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/articles/": listingPage("../", "alpha/", "readme.txt", "beta/", "nested/../escape/", "/articles/gamma/"),
	})

	entries, err := (&ListingSource{URL: site.URL + "/articles"}).Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)

	assert.Equal(t, []article.Location{
		article.Location(site.URL + "/articles/alpha"),
		article.Location(site.URL + "/articles/beta"),
		article.Location(site.URL + "/articles/gamma"),
	}, locations(entries))
}

func TestListingSource_EmptyListing(t *testing.T) {
	site := newTestSite(t, map[string]string{"/articles/": listingPage()})

	entries, err := (&ListingSource{URL: site.URL + "/articles/"}).Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFeedSource_Resolve(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/feed.xml": `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Docs</title>
<item><title>Alpha</title><link>/articles/alpha/index.html</link><description>&lt;p&gt;Alpha &lt;b&gt;intro&lt;/b&gt;&lt;/p&gt;</description></item>
<item><title>Beta</title><link>/articles/beta/</link></item>
<item><title>No link</title></item>
</channel></rss>`,
	})

	entries, err := (&FeedSource{URL: site.URL + "/feed.xml"}).Resolve(context.Background(), newTestFetcher())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, article.Location(site.URL+"/articles/alpha"), entries[0].Location)
	assert.Equal(t, "Alpha", entries[0].Title)
	assert.Equal(t, "Alpha intro", entries[0].Summary)
	assert.True(t, entries[0].Complete)

	assert.Equal(t, article.Location(site.URL+"/articles/beta"), entries[1].Location)
	assert.False(t, entries[1].Complete, "items without a description are enriched")
}
