package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/pager"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
// Width is used to guide truncation via helpers.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderMuted renders text in muted color (utility wrapper).
func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// renderHelp renders help/instructional text consistently.
func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderResults draws two lines per record: title, then summary. The
// selected row is only highlighted while the results pane has focus.
func renderResults(records []article.Record, selected int, focused bool, summaryMax, width int) string {
	if len(records) == 0 {
		return renderHelp(MsgNoResults)
	}

	rows := make([]string, 0, len(records)*2)
	for i, r := range records {
		marker := "  "
		if i == selected && focused {
			marker = "› "
		}

		title := truncateEnd(r.Title, width-len(marker)-1)
		style := ResultTitleStyle
		if r.Status == article.StatusFailed {
			style = FailedTitleStyle
		}
		if i == selected && focused {
			style = SelectedItemStyle
		}
		rows = append(rows, marker+style.Render(title))

		summary := article.Truncate(r.Summary, summaryMax)
		rows = append(rows, "  "+SummaryStyle.Render(truncateEnd(summary, width-3)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderPagination draws the control strip. When focused, the control
// under the cursor is bracketed.
func renderPagination(controls []pager.Control, cursor int, focused bool) string {
	parts := make([]string, len(controls))
	for i, c := range controls {
		style := PagerControlStyle
		switch {
		case c.Active:
			style = PagerActiveStyle
		case c.Kind == pager.KindEllipsis, c.Disabled:
			style = PagerDisabledStyle
		}

		label := " " + c.Label + " "
		if focused && i == cursor {
			label = "[" + c.Label + "]"
		}
		parts[i] = style.Render(label)
	}
	return strings.Join(parts, " ")
}
