// Package catalog owns the catalog refresh: it serves the catalog from the
// cache file when allowed, otherwise scans every location in order, merges
// the results and persists them, publishing Loading, Loaded or Error to
// observers.
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/google/uuid"
)

// Controller runs at most one refresh at a time and owns the resulting
// catalog.
type Controller struct {
	scanner Scanner
	keys    KeyImporter
	store   Store
	runner  HookRunner
	hooks   Hooks

	state *observable

	mu      sync.Mutex
	pending sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithHooks sets the progress callbacks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithHookRunner sets the user script runner.
func WithHookRunner(r HookRunner) Option {
	return func(c *Controller) {
		c.runner = r
	}
}

// NewController creates a controller. keys may be nil when no key import is
// wanted.
func NewController(scanner Scanner, keys KeyImporter, store Store, opts ...Option) *Controller {
	c := &Controller{
		scanner: scanner,
		keys:    keys,
		store:   store,
		state:   newObservable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the latest published state.
func (c *Controller) State() model.State {
	return c.state.get()
}

// Subscribe returns a channel that receives the current state followed by
// every later transition, and a function that ends the subscription.
func (c *Controller) Subscribe() (<-chan model.State, func()) {
	return c.state.subscribe()
}

// Wait blocks until no refresh is running.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Refresh starts a refresh in the background and reports whether it did.
// While a refresh is running further calls are ignored. Loading is
// published before Refresh returns. The refresh is not cancelled with ctx;
// only its values are used. A request without locations publishes an empty
// catalog and never reads or writes the cache, even with LoadFromCache set.
func (c *Controller) Refresh(ctx context.Context, req Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.get().IsLoading() {
		logger.Debug("Refresh already in progress")
		return false
	}

	c.state.publish(model.Loading())
	c.pending.Add(1)

	locations := append([]string(nil), req.Locations...)
	req.Locations = locations
	id := uuid.NewString()

	go func() {
		defer c.pending.Done()
		c.finish(ctx, id, c.run(context.WithoutCancel(ctx), id, req))
	}()
	return true
}

// finish publishes the terminal state of a refresh.
func (c *Controller) finish(ctx context.Context, id string, state model.State) {
	c.state.publish(state)

	if state.Phase() == model.PhaseError {
		emit(c.hooks, Event{Phase: PhaseError, ID: id, Msg: state.Err().Error()})
		return
	}
	emit(c.hooks, Event{Phase: PhaseDone, ID: id})

	if c.runner != nil {
		if err := c.runner.PostRefresh(context.WithoutCancel(ctx), state); err != nil {
			logger.Warn("Post-refresh hook failed", logger.Fields{"refresh": id, "error": err.Error()})
		}
	}
}

func (c *Controller) run(ctx context.Context, id string, req Request) model.State {
	fields := logger.Fields{"refresh": id, "locations": len(req.Locations)}

	if len(req.Locations) == 0 {
		logger.Debug("No locations configured", fields)
		return model.Loaded(model.NewCatalog(), false)
	}

	if req.LoadFromCache {
		cached, err := c.store.Read()
		switch {
		case err == nil:
			logger.Debug("Catalog loaded from cache", logger.Fields{"refresh": id, "entries": cached.Len()})
			return model.Loaded(cached, true)
		case errors.Is(err, errutils.ErrCacheMiss):
			logger.Debug("No catalog cache, scanning", fields)
		default:
			logger.Warn("Catalog cache unusable, scanning", logger.Fields{"refresh": id, "error": err.Error()})
		}
	}

	result, err := c.scan(ctx, id, req)
	if err != nil {
		logger.Error("Refresh failed", logger.Fields{"refresh": id, "error": err.Error()})
		return model.Failed(err)
	}

	emit(c.hooks, Event{Phase: PhaseWritingCache, ID: id})
	if err := c.store.Write(result); err != nil {
		logger.Error("Failed to write catalog cache", logger.Fields{"refresh": id, "error": err.Error()})
	}

	logger.Info("Catalog scanned", logger.Fields{"refresh": id, "entries": result.Len()})
	return model.Loaded(result, false)
}

// scan folds Merge over the locations in order. The first failure discards
// everything scanned so far.
func (c *Controller) scan(ctx context.Context, id string, req Request) (model.Catalog, error) {
	acc := model.NewCatalog()

	for _, loc := range req.Locations {
		if c.keys != nil {
			emit(c.hooks, Event{Phase: PhaseImportingKeys, ID: id, Msg: loc})
			if err := c.keys.Import(ctx, loc); err != nil {
				return nil, err
			}
		}

		if c.runner != nil {
			if err := c.runner.PreScan(ctx, loc, req.Language); err != nil {
				logger.Warn("Pre-scan hook failed", logger.Fields{"refresh": id, "location": loc, "error": err.Error()})
			}
		}

		emit(c.hooks, Event{Phase: PhaseScanning, ID: id, Msg: loc})
		found, err := c.scanner.Scan(ctx, loc, req.Language)
		if err != nil {
			return nil, err
		}
		acc = model.Merge(acc, found)
	}

	return acc, nil
}
