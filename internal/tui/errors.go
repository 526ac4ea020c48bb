package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/shelf/internal/fetch"
	"github.com/pders01/shelf/internal/ingest"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeSourceError turns an ingestion failure into a one-line message
// for the error panel.
func describeSourceError(err error) string {
	var serr *ingest.SourceError
	if !errors.As(err, &serr) {
		return fmt.Sprintf("could not load articles: %v", err)
	}
	if code := fetch.StatusCode(err); code != 0 {
		return fmt.Sprintf("could not load articles: %s source returned HTTP %d", serr.Source, code)
	}
	return fmt.Sprintf("could not load articles from %s source: %v", serr.Source, serr.Err)
}
