// Package article holds the display-ready record produced for every
// ingested article location.
package article

import "strings"

// Location identifies where an article lives: the resolved URL of its
// directory, without a trailing slash.
type Location string

// PageSuffix is appended to a Location to reach the rendered article page.
const PageSuffix = "/index.html"

// Placeholder text for records whose page could not be fetched or parsed.
const (
	PlaceholderTitle   = "failed to load"
	PlaceholderSummary = "content unavailable"
)

type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is created once during ingestion and never mutated afterwards.
type Record struct {
	Location   Location `json:"location"`
	DisplayURL string   `json:"display_url"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Status     Status   `json:"status"`
}

// NewLocation normalizes a resolved URL or path into a Location.
func NewLocation(raw string) Location {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, PageSuffix)
	for len(raw) > 1 && strings.HasSuffix(raw, "/") {
		raw = strings.TrimSuffix(raw, "/")
	}
	return Location(raw)
}

// DisplayURL derives the article page URL from its location.
func DisplayURL(loc Location) string {
	return string(loc) + PageSuffix
}

// New builds a successful record.
func New(loc Location, title, summary string) Record {
	return Record{
		Location:   loc,
		DisplayURL: DisplayURL(loc),
		Title:      title,
		Summary:    summary,
		Status:     StatusOK,
	}
}

// Failed builds a placeholder record for a location that could not be loaded.
func Failed(loc Location) Record {
	return Record{
		Location:   loc,
		DisplayURL: DisplayURL(loc),
		Title:      PlaceholderTitle,
		Summary:    PlaceholderSummary,
		Status:     StatusFailed,
	}
}

// Matches reports whether the lowercased title or summary contains query.
// query must already be normalized with NormalizeQuery.
func (r Record) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Summary), query)
}

// NormalizeQuery trims and lowercases user input.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Truncate caps s at limit runes, appending "..." when it was cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// CollapseSpace trims s and folds internal whitespace runs to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
