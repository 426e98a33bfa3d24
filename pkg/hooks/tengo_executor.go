package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/glorpus-work/romcat/pkg/errutils"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 10 * time.Second

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	timeout time.Duration
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
		timeout: DefaultTimeout,
	}
}

// Execute runs the script of hookType with vars defined as globals. A
// script reports failure by assigning a non-empty string or an error to
// the global "err".
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, vars map[string]interface{}) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	timeout := e.timeout
	e.mutex.RUnlock()

	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))

	// declared so scripts can assign it without := at top level
	if err := scriptInstance.Add("err", ""); err != nil {
		return fmt.Errorf("failed to add err to script: %w", err)
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	compiled, err := scriptInstance.RunContext(runCtx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errutils.ErrHookExecution, err)
	}

	errVar := compiled.Get("err")
	if errVar != nil {
		switch v := errVar.Value().(type) {
		case error:
			return fmt.Errorf("%s: %w: %w", hookType, errutils.ErrHookScript, v)
		case string:
			if v != "" {
				return fmt.Errorf("%s: %w: %s", hookType, errutils.ErrHookScript, v)
			}
		}
	}

	return nil
}

// SetTimeout changes the per-run time limit.
func (e *TengoExecutor) SetTimeout(d time.Duration) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.timeout = d
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
