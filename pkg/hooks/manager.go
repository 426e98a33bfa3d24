package hooks

import (
	"context"
	"sync"

	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/model"
)

// DefaultHookManager runs the refresh hooks with Tengo.
type DefaultHookManager struct {
	executor *TengoExecutor
	mutex    sync.RWMutex
}

// NewHookManager creates a new hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// AddHook adds a new hook.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if !hook.Type.IsValid() {
		return ErrUnsupportedHookType(hook.Type)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes a hook of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.executor.HasScript(hookType)
}

// PreScan runs the pre-scan hook for a location.
//
// Script globals: location (string), systemLanguage (int).
func (m *DefaultHookManager) PreScan(ctx context.Context, location string, lang loader.SystemLanguage) error {
	return m.executor.Execute(ctx, PreScan, map[string]interface{}{
		"location":       location,
		"systemLanguage": int(lang),
	})
}

// PostRefresh runs the post-refresh hook after a catalog was loaded.
//
// Script globals: entryCount (int), formats (map of format name to entry
// count), fromCache (bool).
func (m *DefaultHookManager) PostRefresh(ctx context.Context, state model.State) error {
	catalog := state.Catalog()
	formats := make(map[string]interface{}, len(catalog))
	for f, n := range catalog.Counts() {
		formats[f.String()] = n
	}
	return m.executor.Execute(ctx, PostRefresh, map[string]interface{}{
		"entryCount": catalog.Len(),
		"formats":    formats,
		"fromCache":  state.FromCache(),
	})
}
