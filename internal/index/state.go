// Package index holds the loaded article set, the filtered subset for the
// current query, and the current page.
package index

import (
	"sync"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/metrics"
	"github.com/pders01/shelf/internal/pager"
)

const DefaultPageSize = 10

// State is safe for concurrent use. After every mutation filtered is the
// subsequence of items matching query and page lies within
// [0, max(0, pageCount-1)].
type State struct {
	mu       sync.Mutex
	items    []article.Record
	filtered []article.Record
	query    string
	page     int
	pageSize int
	metrics  *metrics.Metrics
}

func New(pageSize int, m *metrics.Metrics) *State {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &State{pageSize: pageSize, metrics: m}
}

// View is a copy of everything needed to render one frame.
type View struct {
	Query     string
	Page      int
	PageSize  int
	PageCount int
	Total     int
	Matches   int
	Window    pager.Window
	Visible   []article.Record
}

// Empty reports whether the current query matched nothing.
func (v View) Empty() bool {
	return v.Matches == 0
}

// Load replaces the item set, re-applies the current query and resets the
// page to 0.
func (s *State) Load(records []article.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]article.Record(nil), records...)
	s.refilter()
	s.page = 0
}

// SetQuery normalizes q, recomputes the filtered set and resets the page.
func (s *State) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = article.NormalizeQuery(q)
	s.refilter()
	s.page = 0
	s.metrics.ObserveQuery(s.query, len(s.filtered))
}

func (s *State) refilter() {
	if s.query == "" {
		s.filtered = append([]article.Record(nil), s.items...)
		return
	}
	filtered := make([]article.Record, 0, len(s.items))
	for _, r := range s.items {
		if r.Matches(s.query) {
			filtered = append(filtered, r)
		}
	}
	s.filtered = filtered
}

// SetPage moves to page p, clamped to the valid range. It reports whether
// the page changed.
func (s *State) SetPage(p int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPage(p)
}

func (s *State) setPage(p int) bool {
	p = pager.ClampPage(p, s.pageCount())
	if p == s.page {
		return false
	}
	s.page = p
	s.metrics.ObservePageChange()
	return true
}

func (s *State) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPage(s.page + 1)
}

func (s *State) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPage(s.page - 1)
}

func (s *State) First() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPage(0)
}

func (s *State) Last() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPage(s.pageCount() - 1)
}

// SetPageSize changes the page size and re-clamps the current page.
func (s *State) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = 1
	}
	s.pageSize = n
	s.page = pager.ClampPage(s.page, s.pageCount())
}

func (s *State) pageCount() int {
	return pager.PageCount(len(s.filtered), s.pageSize)
}

// Snapshot copies the visible window and counters.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := pager.ComputeWindow(len(s.filtered), s.pageSize, s.page)
	visible := make([]article.Record, w.Len())
	copy(visible, s.filtered[w.Start:w.End])

	return View{
		Query:     s.query,
		Page:      s.page,
		PageSize:  s.pageSize,
		PageCount: s.pageCount(),
		Total:     len(s.items),
		Matches:   len(s.filtered),
		Window:    w,
		Visible:   visible,
	}
}

// Record returns the i-th record of the visible window.
func (s *State) Record(i int) (article.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := pager.ComputeWindow(len(s.filtered), s.pageSize, s.page)
	if i < 0 || i >= w.Len() {
		return article.Record{}, false
	}
	return s.filtered[w.Start+i], true
}
