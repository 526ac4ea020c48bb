package ingest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/fetch"
)

// testSite serves fixed bodies by path and 404s everything else.
type testSite struct {
	*httptest.Server
	routes map[string]string
	hits   atomic.Int64
}

func newTestSite(t *testing.T, routes map[string]string) *testSite {
	t.Helper()
	site := &testSite{routes: routes}
	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.hits.Add(1)
		body, ok := site.routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, ".json"):
			w.Header().Set("Content-Type", "application/json")
		case strings.HasSuffix(r.URL.Path, ".xml"):
			w.Header().Set("Content-Type", "application/rss+xml")
		case strings.HasSuffix(r.URL.Path, ".txt"):
			w.Header().Set("Content-Type", "text/plain")
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(site.Close)
	return site
}

func articlePage(title, summary string) string {
	return `<!DOCTYPE html><html><head><title>` + title + `</title></head><body>
<header><nav>site</nav></header>
<h1>` + title + `</h1>
<div class="madv"><p>` + summary + `</p><p>second paragraph</p></div>
</body></html>`
}

func listingPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table><tr><th><a href="?C=N">Name</a></th><th>Size</th></tr>`)
	for _, h := range hrefs {
		b.WriteString(`<tr><td><a href="` + h + `">` + h + `</a></td><td>-</td></tr>`)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func newTestFetcher() *fetch.Fetcher {
	return fetch.NewFetcher(config.TestConfig())
}
