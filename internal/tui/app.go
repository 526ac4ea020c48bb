package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/index"
	"github.com/pders01/shelf/internal/ingest"
	"github.com/pders01/shelf/internal/pager"
)

// Ingester produces the article set.
type Ingester interface {
	Ingest(ctx context.Context) (*ingest.Result, error)
	SourceName() string
}

// PageFetcher retrieves article pages for the reader view.
type PageFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Opener hands a URL to the system browser.
type Opener interface {
	Open(url string) error
}

type App struct {
	config     *config.Config
	ingester   Ingester
	fetcher    PageFetcher
	launcher   Opener
	state      *index.State
	keyHandler *KeyHandler

	ctx    context.Context
	cancel context.CancelFunc

	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	phase Phase
	view  View
	focus Focus

	cursor      int // row within the visible window
	pagerCursor int // control within the pagination strip

	ingestSeq  int
	lastResult *ingest.Result
	sourceErr  error

	currentRecord  *article.Record
	loadingArticle bool

	status     string
	statusKind StatusKind

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp wires the widget. A nil state gets a fresh one sized from cfg.
func NewApp(cfg *config.Config, ingester Ingester, fetcher PageFetcher, launcher Opener, state *index.State) *App {
	if state == nil {
		state = index.New(cfg.UI.PageSize, nil)
	}

	ApplyTheme(cfg.UI.Colors)

	si := textinput.New()
	si.Placeholder = "Search titles and summaries..."
	si.Prompt = "/ "
	si.CharLimit = 256
	si.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		ingester:    ingester,
		fetcher:     fetcher,
		launcher:    launcher,
		state:       state,
		ctx:         ctx,
		cancel:      cancel,
		searchInput: si,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		phase:       PhaseLoading,
		view:        ViewIndex,
		focus:       FocusSearch,
		width:       80,
		height:      24,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	minWidth := a.config.UI.WordWrapMinWidth
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	wordWrapWidth = max(min(wordWrapWidth, maxWidth), minWidth)
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startIngest(),
		tea.EnterAltScreen,
	)
}

// startIngest begins a fresh ingestion. Results of any earlier run still
// in flight are dropped when they arrive.
func (a *App) startIngest() tea.Cmd {
	a.ingestSeq++
	a.phase = PhaseLoading
	a.sourceErr = nil
	return tea.Batch(a.spinner.Tick, a.ingest(a.ingestSeq))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-3, 1)
		a.searchInput.Width = max(msg.Width-10, 10)
		a.fitPageSize()
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if a.phase != PhaseLoading && !a.loadingArticle {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ingestDoneMsg:
		a.handleIngestDone(msg)
		return a, nil

	case articleRenderedMsg:
		if a.view == ViewReader && a.currentRecord != nil && a.currentRecord.Location == msg.location {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
			if msg.err != nil {
				a.setStatus(msg.err.Error(), StatusWarn)
			} else {
				a.clearStatus()
			}
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), StatusError)
		} else {
			a.setStatus(MsgOpened(msg.url), StatusSuccess)
		}
		return a, nil

	case tea.MouseMsg:
		if a.view == ViewReader {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
	}

	return a, nil
}

func (a *App) handleIngestDone(msg ingestDoneMsg) {
	if msg.seq != a.ingestSeq {
		return
	}
	if msg.err != nil {
		a.phase = PhaseError
		a.sourceErr = msg.err
		return
	}

	a.lastResult = msg.result
	a.state.Load(msg.result.Records)
	a.phase = PhaseReady
	a.cursor = 0
	a.resetPagerCursor()
	a.setStatus(MsgIngested(len(msg.result.Records), msg.result.Failed), StatusSuccess)
}

// applyQuery filters the index on every edit of the search input.
func (a *App) applyQuery(q string) {
	a.state.SetQuery(q)
	a.cursor = 0
	a.resetPagerCursor()
}

// Lines the index view spends outside the result rows: status bar and
// separator, header, search frame, pagination strip, range and URL lines.
const (
	indexChromeLines = 14
	linesPerResult   = 2
)

// fitPageSize shrinks the page so every result fits the terminal height,
// never exceeding the configured page size.
func (a *App) fitPageSize() {
	n := min(max((a.height-indexChromeLines)/linesPerResult, 1), a.config.UI.PageSize)
	if n == a.state.Snapshot().PageSize {
		return
	}
	a.state.SetPageSize(n)
	a.afterPageChange()
}

// afterPageChange keeps the cursors valid after the page moved.
func (a *App) afterPageChange() {
	a.cursor = 0
	if a.focus != FocusPager {
		a.resetPagerCursor()
		return
	}
	controls := a.controls()
	if a.pagerCursor >= len(controls) || !navigable(controls[a.pagerCursor]) {
		a.resetPagerCursor()
	}
}

func (a *App) controls() []pager.Control {
	v := a.state.Snapshot()
	return pager.Controls(v.PageCount, v.Page, a.config.UI.MaxVisiblePages)
}

// resetPagerCursor places the strip cursor on the active page.
func (a *App) resetPagerCursor() {
	controls := a.controls()
	a.pagerCursor = 0
	for i, c := range controls {
		if c.Active {
			a.pagerCursor = i
			return
		}
	}
}

func (a *App) selectedRecord() (article.Record, bool) {
	return a.state.Record(a.cursor)
}

func (a *App) setFocus(f Focus) {
	a.focus = f
	if f == FocusSearch {
		a.searchInput.Focus()
	} else {
		a.searchInput.Blur()
	}
	if f == FocusPager {
		a.resetPagerCursor()
	}
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.cancel()
	return a, tea.Quit
}

func (a *App) View() string {
	var content string
	bodyHeight := max(a.height-3, 1)

	switch {
	case a.phase == PhaseLoading:
		content = renderCentered(a.width, bodyHeight,
			GetCompactBanner(a.spinner.View()+" "+MsgLoadingArticles))
	case a.phase == PhaseError:
		content = renderCentered(a.width, bodyHeight, a.renderSourceError())
	case a.view == ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, bodyHeight,
				renderMuted(a.spinner.View()+" "+MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	default:
		content = ContentWrapper(a.width, bodyHeight).Render(a.renderIndex())
	}

	separatorWidth := max(a.width-2, 0)
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.getCustomStatusBar())
}

func (a *App) renderSourceError() string {
	modalWidth := max((a.width*4)/5, min(a.width, 20))

	return lipgloss.JoinVertical(
		lipgloss.Center,
		ErrorMessageStyle.Render("✗ "+AppName),
		"",
		lipgloss.NewStyle().
			Foreground(TextColor).
			Width(modalWidth).
			Align(lipgloss.Center).
			Render(describeSourceError(a.sourceErr)),
		"",
		renderHelp(MsgReloadHint),
	)
}

func (a *App) renderIndex() string {
	v := a.state.Snapshot()

	subtitle := fmt.Sprintf("%d articles", v.Total)
	if a.lastResult != nil {
		subtitle = fmt.Sprintf("%d articles from %s", v.Total, a.ingester.SourceName())
		if a.lastResult.Failed > 0 {
			subtitle += fmt.Sprintf(" • %d failed to load", a.lastResult.Failed)
		}
	}
	header := renderHeader("› "+AppName, subtitle, a.width)

	input := renderInputFrame(a.searchInput.View(), a.focus == FocusSearch, max(a.width-10, 10))

	var results string
	switch {
	case v.Total == 0:
		results = renderHelp(MsgNoArticles)
	case v.Empty():
		results = renderHelp(MsgNoResults)
	default:
		results = renderResults(v.Visible, a.cursor, a.focus == FocusResults,
			a.config.Extract.SummaryMaxLength, a.width)
	}

	rows := []string{header, "", input, "", results, ""}
	if !v.Empty() {
		controls := pager.Controls(v.PageCount, v.Page, a.config.UI.MaxVisiblePages)
		rows = append(rows,
			renderPagination(controls, a.pagerCursor, a.focus == FocusPager),
			renderMuted(MsgRange(v.Window.Start, v.Window.End, v.Matches)),
		)
		if rec, ok := a.selectedRecord(); ok && a.focus == FocusResults {
			rows = append(rows, renderMuted(truncateMiddle(rec.DisplayURL, a.width-2)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) getCustomStatusBar() string {
	if a.status != "" {
		return StatusBarStyle.
			Width(a.width).
			Render(a.statusKind.style().Render(truncateEnd(a.status, a.width-2)))
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return StatusBarStyle.
		Width(a.width).
		Render(strings.Join(commands, " • "))
}

type ingestDoneMsg struct {
	seq    int
	result *ingest.Result
	err    error
}

type articleRenderedMsg struct {
	location article.Location
	content  string
	err      error
}

type openedMsg struct {
	url string
	err error
}
