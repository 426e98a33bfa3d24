package catalog_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glorpus-work/romcat/pkg/cache"
	"github.com/glorpus-work/romcat/pkg/catalog"
	catmocks "github.com/glorpus-work/romcat/pkg/catalog/mocks"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	e1 = model.Entry{Title: "e1", Path: "/a/e1.nro", Format: model.FormatNRO}
	e2 = model.Entry{Title: "e2", Path: "/b/e2.nro", Format: model.FormatNRO}
	e3 = model.Entry{Title: "e3", Path: "/b/e3.nsp", Format: model.FormatNSP}
	e4 = model.Entry{Title: "e4", Path: "/c/e4.xci", Format: model.FormatXCI}

	catalogA = model.Catalog{model.FormatNRO: {e1}}
	catalogB = model.Catalog{model.FormatNRO: {e2}, model.FormatNSP: {e3}}
	catalogC = model.Catalog{model.FormatXCI: {e4}}
)

func refresh(t *testing.T, c *catalog.Controller, req catalog.Request) model.State {
	t.Helper()
	require.True(t, c.Refresh(context.Background(), req))
	c.Wait()
	state := c.State()
	require.True(t, state.IsTerminal(), "refresh ended in %s", state)
	return state
}

func TestRefresh_ScenarioMergesInLocationOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	keys := catmocks.NewMockKeyImporter(ctrl)
	store := catmocks.NewMockStore(ctrl)

	var written model.Catalog
	gomock.InOrder(
		store.EXPECT().Read().Return(nil, errutils.ErrCacheMiss),
		keys.EXPECT().Import(gomock.Any(), "A").Return(nil),
		scanner.EXPECT().Scan(gomock.Any(), "A", loader.Japanese).Return(catalogA, nil),
		keys.EXPECT().Import(gomock.Any(), "B").Return(nil),
		scanner.EXPECT().Scan(gomock.Any(), "B", loader.Japanese).Return(catalogB, nil),
		store.EXPECT().Write(gomock.Any()).DoAndReturn(func(c model.Catalog) error {
			written = c
			return nil
		}),
	)

	c := catalog.NewController(scanner, keys, store)
	state := refresh(t, c, catalog.Request{LoadFromCache: true, Locations: []string{"A", "B"}, Language: loader.Japanese})

	want := model.Catalog{model.FormatNRO: {e1, e2}, model.FormatNSP: {e3}}
	require.Equal(t, model.PhaseLoaded, state.Phase())
	assert.False(t, state.FromCache())
	assert.True(t, want.Equal(state.Catalog()), "got %v", state.Catalog())
	assert.True(t, want.Equal(written), "cache got %v", written)
}

func TestRefresh_LoadedEqualsLeftFold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	results := map[string]model.Catalog{"A": catalogA, "B": catalogB, "C": catalogC}
	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, loc string, _ loader.SystemLanguage) (model.Catalog, error) {
			return results[loc], nil
		},
	).Times(3)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(nil)

	c := catalog.NewController(scanner, nil, store)
	state := refresh(t, c, catalog.Request{Locations: []string{"C", "A", "B"}})

	want := model.Merge(model.Merge(model.Merge(model.NewCatalog(), catalogC), catalogA), catalogB)
	assert.True(t, want.Equal(state.Catalog()))
}

func TestRefresh_SecondRefreshServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil).Times(1)
	scanner.EXPECT().Scan(gomock.Any(), "B", gomock.Any()).Return(catalogB, nil).Times(1)

	store := cache.NewFile(filepath.Join(t.TempDir(), "roms.bin"))
	c := catalog.NewController(scanner, nil, store)
	req := catalog.Request{LoadFromCache: true, Locations: []string{"A", "B"}}

	first := refresh(t, c, req)
	assert.False(t, first.FromCache())

	second := refresh(t, c, req)
	require.Equal(t, model.PhaseLoaded, second.Phase())
	assert.True(t, second.FromCache())
	assert.True(t, first.Catalog().Equal(second.Catalog()))
}

func TestRefresh_WithoutCacheAlwaysScans(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil).Times(2)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(nil).Times(2)

	c := catalog.NewController(scanner, nil, store)
	req := catalog.Request{LoadFromCache: false, Locations: []string{"A"}}
	refresh(t, c, req)
	refresh(t, c, req)
}

func TestRefresh_IgnoredWhileLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	started := make(chan struct{})
	release := make(chan struct{})
	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).DoAndReturn(
		func(context.Context, string, loader.SystemLanguage) (model.Catalog, error) {
			close(started)
			<-release
			return catalogA, nil
		},
	).Times(1)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(nil)

	c := catalog.NewController(scanner, nil, store)
	req := catalog.Request{Locations: []string{"A"}}

	require.True(t, c.Refresh(context.Background(), req))
	assert.True(t, c.State().IsLoading(), "Loading must be visible when Refresh returns")
	<-started

	assert.False(t, c.Refresh(context.Background(), req))
	assert.False(t, c.Refresh(context.Background(), catalog.Request{LoadFromCache: true, Locations: []string{"B"}}))
	assert.True(t, c.State().IsLoading())

	close(release)
	c.Wait()
	assert.Equal(t, model.PhaseLoaded, c.State().Phase())
}

func TestRefresh_EmptyLocationsSkipCache(t *testing.T) {
	for _, fromCache := range []bool{true, false} {
		t.Run(map[bool]string{true: "load from cache", false: "scan"}[fromCache], func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// no expectations: any call fails the test
			scanner := catmocks.NewMockScanner(ctrl)
			keys := catmocks.NewMockKeyImporter(ctrl)
			store := catmocks.NewMockStore(ctrl)

			c := catalog.NewController(scanner, keys, store)
			state := refresh(t, c, catalog.Request{LoadFromCache: fromCache})

			require.Equal(t, model.PhaseLoaded, state.Phase())
			assert.Equal(t, 0, state.Catalog().Len())
		})
	}
}

func TestRefresh_ScanFailureDiscardsPartialResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanErr := errutils.ErrScanWithLocation("B", errors.New("permission denied"))
	scanner := catmocks.NewMockScanner(ctrl)
	store := catmocks.NewMockStore(ctrl)

	gomock.InOrder(
		scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil),
		scanner.EXPECT().Scan(gomock.Any(), "B", gomock.Any()).Return(catalogB, nil),
		scanner.EXPECT().Scan(gomock.Any(), "C", gomock.Any()).Return(catalogC, nil),
		store.EXPECT().Write(gomock.Any()).Return(nil),
	)
	gomock.InOrder(
		scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil),
		scanner.EXPECT().Scan(gomock.Any(), "B", gomock.Any()).Return(nil, scanErr),
	)

	c := catalog.NewController(scanner, nil, store)
	req := catalog.Request{Locations: []string{"A", "B", "C"}}

	first := refresh(t, c, req)
	require.Equal(t, model.PhaseLoaded, first.Phase())

	second := refresh(t, c, req)
	require.Equal(t, model.PhaseError, second.Phase())
	require.ErrorIs(t, second.Err(), errutils.ErrScan)
	assert.Nil(t, second.Catalog(), "no catalog may be observable after a failure")
	assert.Nil(t, c.State().Catalog())
}

func TestRefresh_KeyImportFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	importErr := errutils.ErrKeyImportWithLocation("A", errors.New("input/output error"))
	keys := catmocks.NewMockKeyImporter(ctrl)
	keys.EXPECT().Import(gomock.Any(), "A").Return(importErr)
	scanner := catmocks.NewMockScanner(ctrl)
	store := catmocks.NewMockStore(ctrl)

	c := catalog.NewController(scanner, keys, store)
	state := refresh(t, c, catalog.Request{Locations: []string{"A"}})

	require.Equal(t, model.PhaseError, state.Phase())
	require.ErrorIs(t, state.Err(), errutils.ErrKeyImport)
}

func TestRefresh_CacheWriteFailureStillLoaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(errutils.ErrCacheWrite)

	c := catalog.NewController(scanner, nil, store)
	state := refresh(t, c, catalog.Request{Locations: []string{"A"}})

	require.Equal(t, model.PhaseLoaded, state.Phase())
	assert.True(t, catalogA.Equal(state.Catalog()))
}

func TestRefresh_UnusableCacheFallsBackToScan(t *testing.T) {
	tests := []struct {
		name    string
		readErr error
	}{
		{"miss", errutils.ErrCacheMiss},
		{"corrupt", errutils.ErrCacheCorruptWithReason("digest mismatch")},
		{"incompatible", errutils.ErrCacheIncompatibleWithReason("unknown format \"NXX\"")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := catmocks.NewMockStore(ctrl)
			scanner := catmocks.NewMockScanner(ctrl)
			gomock.InOrder(
				store.EXPECT().Read().Return(nil, tt.readErr),
				scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).Return(catalogA, nil),
				store.EXPECT().Write(gomock.Any()).Return(nil),
			)

			c := catalog.NewController(scanner, nil, store)
			state := refresh(t, c, catalog.Request{LoadFromCache: true, Locations: []string{"A"}})

			require.Equal(t, model.PhaseLoaded, state.Phase())
			assert.False(t, state.FromCache())
			assert.True(t, catalogA.Equal(state.Catalog()))
		})
	}
}

func TestRefresh_CopiesLocations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).DoAndReturn(
		func(context.Context, string, loader.SystemLanguage) (model.Catalog, error) {
			<-release
			return catalogA, nil
		},
	)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(nil)

	locations := []string{"A"}
	c := catalog.NewController(scanner, nil, store)
	require.True(t, c.Refresh(context.Background(), catalog.Request{Locations: locations}))
	locations[0] = "Z"
	close(release)
	c.Wait()
	assert.Equal(t, model.PhaseLoaded, c.State().Phase())
}

func TestRefresh_NotCancelledWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "A", gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ loader.SystemLanguage) (model.Catalog, error) {
			cancel()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return catalogA, nil
		},
	)
	store := catmocks.NewMockStore(ctrl)
	store.EXPECT().Write(gomock.Any()).Return(nil)

	c := catalog.NewController(scanner, nil, store)
	require.True(t, c.Refresh(ctx, catalog.Request{Locations: []string{"A"}}))
	c.Wait()
	assert.Equal(t, model.PhaseLoaded, c.State().Phase())
}

func TestSubscribe_ReceivesEveryTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	store := catmocks.NewMockStore(ctrl)

	c := catalog.NewController(scanner, nil, store)
	updates, cancel := c.Subscribe()
	defer cancel()

	refresh(t, c, catalog.Request{Locations: []string{"A"}})

	var phases []model.Phase
	for i := 0; i < 3; i++ {
		phases = append(phases, (<-updates).Phase())
	}
	assert.Equal(t, []model.Phase{model.PhaseIdle, model.PhaseLoading, model.PhaseError}, phases)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	c := catalog.NewController(nil, nil, nil)
	updates, cancel := c.Subscribe()
	assert.Equal(t, model.PhaseIdle, (<-updates).Phase())

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestHooks_EventsAndScripts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := catmocks.NewMockScanner(ctrl)
	keys := catmocks.NewMockKeyImporter(ctrl)
	store := catmocks.NewMockStore(ctrl)
	runner := catmocks.NewMockHookRunner(ctrl)

	gomock.InOrder(
		keys.EXPECT().Import(gomock.Any(), "A").Return(nil),
		runner.EXPECT().PreScan(gomock.Any(), "A", loader.German).Return(errors.New("script error")),
		scanner.EXPECT().Scan(gomock.Any(), "A", loader.German).Return(catalogA, nil),
		store.EXPECT().Write(gomock.Any()).Return(nil),
		runner.EXPECT().PostRefresh(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, s model.State) error {
				assert.Equal(t, model.PhaseLoaded, s.Phase())
				return errors.New("post hook error")
			},
		),
	)

	var mu sync.Mutex
	var events []catalog.Event
	c := catalog.NewController(scanner, keys, store,
		catalog.WithHookRunner(runner),
		catalog.WithHooks(catalog.Hooks{OnEvent: func(e catalog.Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}}),
	)

	state := refresh(t, c, catalog.Request{Locations: []string{"A"}, Language: loader.German})
	require.Equal(t, model.PhaseLoaded, state.Phase(), "hook failures must not fail the refresh")

	mu.Lock()
	defer mu.Unlock()
	phases := make([]string, len(events))
	for i, e := range events {
		phases[i] = e.Phase
		assert.Equal(t, events[0].ID, e.ID, "events of one refresh share its ID")
	}
	assert.Equal(t, []string{
		catalog.PhaseImportingKeys,
		catalog.PhaseScanning,
		catalog.PhaseWritingCache,
		catalog.PhaseDone,
	}, phases)
	assert.NotEmpty(t, events[0].ID)
}
