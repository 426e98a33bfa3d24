//go:generate mockgen -destination=./mocks/catalog.go . Scanner,KeyImporter,Store,HookRunner

package catalog

import (
	"context"

	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/model"
)

// Scanner produces the catalog of a single location.
type Scanner interface {
	Scan(ctx context.Context, location string, lang loader.SystemLanguage) (model.Catalog, error)
}

// KeyImporter imports the key files of a location. It runs once per
// location before the location is scanned; a returned error aborts the
// refresh.
type KeyImporter interface {
	Import(ctx context.Context, location string) error
}

// Store persists the catalog between runs.
type Store interface {
	Read() (model.Catalog, error)
	Write(catalog model.Catalog) error
}

// HookRunner runs user scripts around a refresh. Its errors are logged and
// never affect the refresh result.
type HookRunner interface {
	PreScan(ctx context.Context, location string, lang loader.SystemLanguage) error
	PostRefresh(ctx context.Context, state model.State) error
}

// Request describes one refresh.
type Request struct {
	// LoadFromCache allows the refresh to be served from the cache file.
	LoadFromCache bool
	// Locations are scanned in order; their results are merged in order.
	Locations []string
	// Language selects localized titles.
	Language loader.SystemLanguage
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // importing-keys|scanning|writing-cache|done|error
	ID    string // refresh ID
	Msg   string
}

// Progress phases reported through Hooks.OnEvent.
const (
	PhaseImportingKeys = "importing-keys"
	PhaseScanning      = "scanning"
	PhaseWritingCache  = "writing-cache"
	PhaseDone          = "done"
	PhaseError         = "error"
)

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}
