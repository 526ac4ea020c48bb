// Package pager computes the visible result window and the compact
// page-button strip shown beneath it.
package pager

import "strconv"

// Window is the half-open range [Start, End) of the filtered set on screen.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int {
	return w.End - w.Start
}

// ComputeWindow never returns Start > total or a window wider than pageSize.
func ComputeWindow(total, pageSize, page int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 0 {
		page = 0
	}
	if total < 0 {
		total = 0
	}
	start := min(page*pageSize, total)
	end := min(start+pageSize, total)
	return Window{Start: start, End: end}
}

// PageCount is ceil(total/pageSize); zero for an empty set.
func PageCount(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage bounds page to [0, max(0, pageCount-1)].
func ClampPage(page, pageCount int) int {
	if page >= pageCount {
		page = pageCount - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

type Kind int

const (
	KindPrev Kind = iota
	KindPage
	KindEllipsis
	KindNext
)

func (k Kind) String() string {
	switch k {
	case KindPrev:
		return "prev"
	case KindPage:
		return "page"
	case KindEllipsis:
		return "ellipsis"
	case KindNext:
		return "next"
	default:
		return "unknown"
	}
}

// Control is one element of the pagination strip. Page is the zero-based
// target for KindPage controls.
type Control struct {
	Kind     Kind
	Page     int
	Label    string
	Active   bool
	Disabled bool
}

// Interactive reports whether activating the control changes state.
func (c Control) Interactive() bool {
	return c.Kind != KindEllipsis && !c.Disabled && !c.Active
}

const (
	PrevLabel     = "‹"
	NextLabel     = "›"
	EllipsisLabel = "…"
)

// Controls builds the strip for the given page. When pageCount exceeds
// maxVisible a window of maxVisible pages is centred on page, and the first
// and last pages are kept outside it with ellipses over any gap.
func Controls(pageCount, page, maxVisible int) []Control {
	if maxVisible < 1 {
		maxVisible = 1
	}
	page = ClampPage(page, pageCount)

	controls := []Control{{
		Kind:     KindPrev,
		Page:     page - 1,
		Label:    PrevLabel,
		Disabled: page == 0,
	}}

	if pageCount <= maxVisible {
		for i := range pageCount {
			controls = append(controls, pageControl(i, page))
		}
	} else {
		start := max(0, page-maxVisible/2)
		end := start + maxVisible - 1
		if end > pageCount-1 {
			end = pageCount - 1
			start = max(0, end-maxVisible+1)
		}

		if start > 0 {
			controls = append(controls, pageControl(0, page))
		}
		if start > 1 {
			controls = append(controls, ellipsis())
		}
		for i := start; i <= end; i++ {
			controls = append(controls, pageControl(i, page))
		}
		if end < pageCount-2 {
			controls = append(controls, ellipsis())
		}
		if end < pageCount-1 {
			controls = append(controls, pageControl(pageCount-1, page))
		}
	}

	return append(controls, Control{
		Kind:     KindNext,
		Page:     page + 1,
		Label:    NextLabel,
		Disabled: page >= pageCount-1,
	})
}

func pageControl(i, current int) Control {
	return Control{
		Kind:   KindPage,
		Page:   i,
		Label:  strconv.Itoa(i + 1),
		Active: i == current,
	}
}

func ellipsis() Control {
	return Control{Kind: KindEllipsis, Page: -1, Label: EllipsisLabel, Disabled: true}
}

// Labels returns the label of every control, for logs and tests.
func Labels(controls []Control) []string {
	out := make([]string, len(controls))
	for i, c := range controls {
		out[i] = c.Label
	}
	return out
}
