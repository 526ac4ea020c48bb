package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/shelf/internal/fetch"
)

// ManifestSource reads one or more plain-text manifests listing one
// location per line. Lines starting with # are comments.
type ManifestSource struct {
	URLs []string
}

func (s *ManifestSource) Name() string { return "manifest" }

// Resolve fetches every manifest concurrently and concatenates their
// entries in configured order. Any failed manifest fails the source.
func (s *ManifestSource) Resolve(ctx context.Context, f *fetch.Fetcher) ([]Entry, error) {
	if len(s.URLs) == 0 {
		return nil, fmt.Errorf("no manifests configured")
	}

	parts := make([][]Entry, len(s.URLs))
	g, gctx := errgroup.WithContext(ctx)
	for i, manifestURL := range s.URLs {
		g.Go(func() error {
			body, err := f.Get(gctx, manifestURL)
			if err != nil {
				return fmt.Errorf("manifest %s: %w", manifestURL, err)
			}
			entries, err := parseManifest(manifestURL, body)
			if err != nil {
				return fmt.Errorf("manifest %s: %w", manifestURL, err)
			}
			parts[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Entry
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

func parseManifest(manifestURL string, body []byte) ([]Entry, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest URL: %w", err)
	}

	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		loc, err := resolveLocation(base, line)
		if err != nil || loc == "" {
			continue
		}
		entries = append(entries, Entry{Location: loc})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}
