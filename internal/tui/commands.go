package tui

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/debuglog"
)

// readerFallbacks are tried when the configured reader selector matches nothing.
var readerFallbacks = []string{"article", "main", "body"}

func (a *App) ingest(seq int) tea.Cmd {
	ctx := a.ctx
	ingester := a.ingester
	return func() tea.Msg {
		res, err := ingester.Ingest(ctx)
		return ingestDoneMsg{seq: seq, result: res, err: err}
	}
}

// openReader switches to the reader view and renders rec in the background.
func (a *App) openReader(rec article.Record) tea.Cmd {
	a.currentRecord = &rec
	a.loadingArticle = true
	a.view = ViewReader
	a.setStatus(MsgLoadingArticle, StatusInfo)
	return tea.Batch(a.spinner.Tick, a.renderArticle(rec))
}

func (a *App) renderArticle(rec article.Record) tea.Cmd {
	r, rendererErr := a.getRenderer()
	ctx := a.ctx
	fetcher := a.fetcher
	selector := a.config.Extract.ReaderSelector

	return func() tea.Msg {
		if rendererErr != nil {
			return articleRenderedMsg{
				location: rec.Location,
				content:  "Error initializing renderer: " + rendererErr.Error(),
				err:      rendererErr,
			}
		}

		var fetchErr error
		body, err := fetcher.Get(ctx, rec.DisplayURL)
		if err != nil {
			fetchErr = wrapErr("loading article", err)
		}

		var md string
		if fetchErr == nil {
			md, err = articleMarkdown(body, selector)
			if err != nil {
				fetchErr = wrapErr("converting article", err)
			}
		}
		if fetchErr != nil {
			debuglog.WithFields(map[string]any{"location": rec.Location}).Warnf("%v", fetchErr)
			md = rec.Summary + "\n\n*" + fetchErr.Error() + "*"
		}

		rendered, err := r.Render(readerDocument(rec, md))
		if err != nil {
			return articleRenderedMsg{
				location: rec.Location,
				content:  fmt.Sprintf("Failed to render article: %s\n\nPress Escape to go back.", err),
				err:      err,
			}
		}
		return articleRenderedMsg{location: rec.Location, content: rendered, err: fetchErr}
	}
}

// readerDocument assembles the markdown shown in the reader view.
func readerDocument(rec article.Record, body string) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# %s\n\n", rec.Title))
	content.WriteString(fmt.Sprintf("[Read Online](%s)\n\n", rec.DisplayURL))
	content.WriteString("---\n\n")
	content.WriteString(body)
	return content.String()
}

// articleMarkdown converts the article body selected by selector to
// markdown, falling back to broader containers.
func articleMarkdown(page []byte, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}

	var sel *goquery.Selection
	for _, s := range append([]string{selector}, readerFallbacks...) {
		if s == "" {
			continue
		}
		if found := doc.Find(s).First(); found.Length() > 0 {
			sel = found
			break
		}
	}
	if sel == nil {
		return "", fmt.Errorf("no readable content")
	}

	sel.Find("script, style, nav, header, footer").Remove()
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", err
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

func (a *App) openURL(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(url); err != nil {
			return openedMsg{url: url, err: fmt.Errorf("failed to open %s: %w", url, err)}
		}
		return openedMsg{url: url}
	}
}
