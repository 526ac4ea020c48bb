package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingArticles = "Loading articles…"
	MsgLoadingArticle  = "Loading article…"
	MsgReloading       = "Reloading…"
	MsgNoResults       = "no matching articles"
	MsgNoArticles      = "no articles found"
	MsgReloadHint      = "press r to reload • q to quit"
)

func MsgIngested(total, failed int) string {
	base := fmt.Sprintf("Loaded %d articles", total)
	if total == 1 {
		base = "Loaded 1 article"
	}
	if failed > 0 {
		base += fmt.Sprintf(" • %d failed to load", failed)
	}
	return base
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgRange describes the visible window, e.g. "11–20 of 23".
func MsgRange(start, end, matches int) string {
	if matches == 0 {
		return MsgResultsCount(0)
	}
	return fmt.Sprintf("%d–%d of %s", start+1, end, MsgResultsCount(matches))
}

func MsgOpened(url string) string {
	return fmt.Sprintf("Opened %s", strings.TrimSpace(url))
}
