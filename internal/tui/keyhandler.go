package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/pager"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, keys: cfg.Keys.Bindings}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app.quit()
	}

	switch kh.app.phase {
	case PhaseLoading:
		if key == kh.keys.Quit {
			return kh.app.quit()
		}
		return kh.app, nil
	case PhaseError:
		return kh.handleErrorKeys(key)
	}

	kh.app.clearStatus()

	if kh.app.view == ViewReader {
		return kh.handleReaderKeys(msg)
	}

	if model, cmd, handled := kh.handlePagingShortcuts(key); handled {
		return model, cmd
	}

	switch kh.app.focus {
	case FocusSearch:
		return kh.handleSearchInput(msg)
	case FocusResults:
		return kh.handleResultsKeys(key)
	case FocusPager:
		return kh.handlePagerKeys(key)
	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) handleErrorKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case kh.keys.Quit, "esc":
		return kh.app.quit()
	case kh.keys.Reload, "enter":
		return kh.app, kh.app.startIngest()
	}
	return kh.app, nil
}

// handlePagingShortcuts moves between pages from any focus.
func (kh *KeyHandler) handlePagingShortcuts(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "pgup", kh.modifierKey + "left":
		kh.changePage(kh.app.state.Prev)
		return kh.app, nil, true
	case "pgdown", kh.modifierKey + "right":
		kh.changePage(kh.app.state.Next)
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) changePage(move func() bool) {
	if move() {
		kh.app.afterPageChange()
	}
}

func (kh *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if kh.app.searchInput.Value() != "" {
			kh.app.searchInput.SetValue("")
			kh.app.applyQuery("")
			return kh.app, nil
		}
		kh.app.setFocus(FocusResults)
		return kh.app, nil
	case "tab", "down", "enter":
		kh.app.setFocus(FocusResults)
		return kh.app, nil
	case "shift+tab":
		kh.app.setFocus(FocusPager)
		return kh.app, nil
	}

	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	if value := kh.app.searchInput.Value(); value != prev {
		kh.app.applyQuery(sanitizeSearchInput(value))
	}
	return kh.app, cmd
}

func (kh *KeyHandler) handleResultsKeys(key string) (tea.Model, tea.Cmd) {
	app := kh.app
	visible := len(app.state.Snapshot().Visible)

	switch key {
	case kh.keys.Quit:
		return app.quit()
	case kh.keys.Search, "i":
		app.setFocus(FocusSearch)
	case kh.keys.Reload:
		app.setStatus(MsgReloading, StatusInfo)
		return app, app.startIngest()
	case kh.keys.Back:
		app.setFocus(FocusSearch)
	case kh.keys.Open:
		if rec, ok := app.selectedRecord(); ok {
			return app, app.openURL(rec.DisplayURL)
		}
	case "enter":
		if rec, ok := app.selectedRecord(); ok {
			return app, app.openReader(rec)
		}
	case "tab":
		app.setFocus(FocusPager)
	case "shift+tab":
		app.setFocus(FocusSearch)
	case "up", "k":
		if app.cursor == 0 {
			app.setFocus(FocusSearch)
		} else {
			app.cursor--
		}
	case "down", "j":
		if app.cursor < visible-1 {
			app.cursor++
		}
	case "left", "h":
		kh.changePage(app.state.Prev)
	case "right", "l":
		kh.changePage(app.state.Next)
	case "home", "g":
		kh.changePage(app.state.First)
	case "end", "G":
		kh.changePage(app.state.Last)
	}
	return app, nil
}

func (kh *KeyHandler) handlePagerKeys(key string) (tea.Model, tea.Cmd) {
	app := kh.app

	switch key {
	case kh.keys.Quit:
		return app.quit()
	case kh.keys.Search:
		app.setFocus(FocusSearch)
	case kh.keys.Reload:
		app.setStatus(MsgReloading, StatusInfo)
		return app, app.startIngest()
	case kh.keys.Back, "up":
		app.setFocus(FocusResults)
	case "tab":
		app.setFocus(FocusSearch)
	case "shift+tab":
		app.setFocus(FocusResults)
	case "left", "h":
		app.pagerCursor = moveCursor(app.controls(), app.pagerCursor, -1)
	case "right", "l":
		app.pagerCursor = moveCursor(app.controls(), app.pagerCursor, 1)
	case "enter", " ":
		kh.activate()
	}
	return app, nil
}

// activate applies the control under the strip cursor.
func (kh *KeyHandler) activate() {
	app := kh.app
	controls := app.controls()
	if app.pagerCursor < 0 || app.pagerCursor >= len(controls) {
		return
	}

	c := controls[app.pagerCursor]
	if !c.Interactive() {
		return
	}

	var changed bool
	switch c.Kind {
	case pager.KindPrev:
		changed = app.state.Prev()
	case pager.KindNext:
		changed = app.state.Next()
	case pager.KindPage:
		changed = app.state.SetPage(c.Page)
	}
	if !changed {
		return
	}

	app.cursor = 0
	updated := app.controls()
	debuglog.WithFields(map[string]any{
		"control": c.Kind,
		"label":   c.Label,
	}).Debugf("page changed, strip now %v", pager.Labels(updated))
	// Prev and Next keep the cursor while they stay enabled.
	if c.Kind == pager.KindPrev || c.Kind == pager.KindNext {
		for i, u := range updated {
			if u.Kind == c.Kind && navigable(u) {
				app.pagerCursor = i
				return
			}
		}
	}
	app.resetPagerCursor()
}

// navigable reports whether the strip cursor may rest on c.
func navigable(c pager.Control) bool {
	return c.Kind != pager.KindEllipsis && !c.Disabled
}

// moveCursor steps from i in direction dir to the next navigable control.
func moveCursor(controls []pager.Control, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(controls); j += dir {
		if navigable(controls[j]) {
			return j
		}
	}
	return i
}

func (kh *KeyHandler) handleReaderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app

	switch msg.String() {
	case kh.keys.Quit:
		return app.quit()
	case kh.keys.Back, "backspace":
		app.view = ViewIndex
		app.currentRecord = nil
		app.loadingArticle = false
		return app, nil
	case kh.keys.Open:
		if app.currentRecord != nil {
			return app, app.openURL(app.currentRecord.DisplayURL)
		}
		return app, nil
	}

	var cmd tea.Cmd
	app.viewport, cmd = app.viewport.Update(msg)
	return app, cmd
}

// sanitizeSearchInput sanitizes and limits search input length
func sanitizeSearchInput(input string) string {
	r := []rune(input)
	if len(r) > 256 {
		input = string(r[:256])
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	return input
}

// GetHelpForCurrentView returns the key hints for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	app := kh.app
	switch {
	case app.phase == PhaseLoading:
		return []string{kh.keys.Quit + ": quit"}
	case app.phase == PhaseError:
		return []string{kh.keys.Reload + ": reload", kh.keys.Quit + ": quit"}
	case app.view == ViewReader:
		return []string{"↑↓: scroll", kh.keys.Open + ": open in browser", kh.keys.Back + ": back", kh.keys.Quit + ": quit"}
	}

	switch app.focus {
	case FocusSearch:
		return []string{"type to filter", "tab/↓: results", "pgup/pgdn: page", "esc: clear"}
	case FocusResults:
		return []string{"↑↓: select", "enter: read", kh.keys.Open + ": open", "←→: page", kh.keys.Search + ": search", kh.keys.Reload + ": reload", kh.keys.Quit + ": quit"}
	case FocusPager:
		return []string{"←→: move", "enter: go", "tab: search", kh.modifierKey + "←/→: prev/next", kh.keys.Quit + ": quit"}
	default:
		return []string{}
	}
}
