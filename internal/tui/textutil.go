package tui

import "github.com/charmbracelet/x/ansi"

// truncateEnd fits s into width terminal cells, ending with an ellipsis
// when something was cut.
func truncateEnd(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// truncateMiddle keeps both ends of s, which suits URLs.
func truncateMiddle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := ansi.StringWidth(s)
	if n <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	left := (width - 1) / 2
	right := width - 1 - left
	return ansi.Truncate(s, left, "") + "…" + ansi.TruncateLeft(s, n-right, "")
}
