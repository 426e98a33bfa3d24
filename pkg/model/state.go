package model

// Phase is the variant tag of a refresh State.
type Phase int

// Refresh phases. PhaseIdle only occurs before the first refresh.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the observable result of a catalog refresh. Only the payload of
// the active phase is set: a catalog for PhaseLoaded, an error for PhaseError.
type State struct {
	phase     Phase
	catalog   Catalog
	err       error
	fromCache bool
}

// Idle returns the state before any refresh has been requested.
func Idle() State {
	return State{phase: PhaseIdle}
}

// Loading returns the state published while a refresh is in flight.
func Loading() State {
	return State{phase: PhaseLoading}
}

// Loaded returns a terminal state carrying the refreshed catalog.
func Loaded(catalog Catalog, fromCache bool) State {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return State{phase: PhaseLoaded, catalog: catalog, fromCache: fromCache}
}

// Failed returns a terminal state carrying the cause of a failed refresh.
func Failed(err error) State {
	return State{phase: PhaseError, err: err}
}

// Phase returns the variant tag.
func (s State) Phase() Phase {
	return s.phase
}

// IsLoading reports whether a refresh is in flight.
func (s State) IsLoading() bool {
	return s.phase == PhaseLoading
}

// IsTerminal reports whether the state is Loaded or Error.
func (s State) IsTerminal() bool {
	return s.phase == PhaseLoaded || s.phase == PhaseError
}

// Catalog returns a copy of the loaded catalog, or nil unless the phase is
// PhaseLoaded.
func (s State) Catalog() Catalog {
	if s.phase != PhaseLoaded {
		return nil
	}
	return s.catalog.Clone()
}

// FromCache reports whether a loaded catalog was read from the cache file
// rather than produced by a scan.
func (s State) FromCache() bool {
	return s.fromCache
}

// Err returns the refresh failure, or nil unless the phase is PhaseError.
func (s State) Err() error {
	return s.err
}

func (s State) String() string {
	return s.phase.String()
}
