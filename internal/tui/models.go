package tui

type View int

const (
	ViewIndex View = iota
	ViewReader
)

// Phase tracks ingestion. PhaseError is terminal until a manual reload.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

// Focus cycles with tab: search input, results, pagination strip.
type Focus int

const (
	FocusSearch Focus = iota
	FocusResults
	FocusPager
)

func (f Focus) next() Focus {
	return (f + 1) % 3
}

func (f Focus) prev() Focus {
	return (f + 2) % 3
}
