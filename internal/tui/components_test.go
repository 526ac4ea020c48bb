package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/pager"
)

func TestRenderResults(t *testing.T) {
	records := []article.Record{
		article.New("http://h/a", "Alpha", strings.Repeat("long summary ", 30)),
		article.Failed("http://h/b"),
	}

	out := renderResults(records, 1, true, 20, 80)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "long summary long su...")
	assert.Contains(t, out, "› "+article.PlaceholderTitle)
	assert.Contains(t, out, article.PlaceholderSummary)

	unfocused := renderResults(records, 1, false, 20, 80)
	assert.NotContains(t, unfocused, "› ")

	assert.Contains(t, renderResults(nil, 0, true, 20, 80), MsgNoResults)
}

func TestRenderPagination(t *testing.T) {
	controls := pager.Controls(12, 6, 5)

	out := renderPagination(controls, 3, true)
	for _, label := range []string{"‹", "1", "…", "[5]", "7", "12", "›"} {
		assert.Contains(t, out, label)
	}

	assert.NotContains(t, renderPagination(controls, 3, false), "[")
}

func TestTruncateHelpers(t *testing.T) {
	assert.Equal(t, "hello", truncateEnd("hello", 10))
	assert.Equal(t, "hel…", truncateEnd("hello", 4))
	assert.Equal(t, "", truncateEnd("hello", 0))
	assert.Equal(t, "ab…yz", truncateMiddle("abcdefghijklmnopqrstuvwxyz", 5))
	assert.Equal(t, "short", truncateMiddle("short", 10))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Loaded 1 article", MsgIngested(1, 0))
	assert.Equal(t, "Loaded 23 articles • 2 failed to load", MsgIngested(23, 2))
	assert.Equal(t, "21–23 of 23 results", MsgRange(20, 23, 23))
	assert.Equal(t, "0 results", MsgRange(0, 0, 0))
	assert.Equal(t, "1 result", MsgResultsCount(1))
}
