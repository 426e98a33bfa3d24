package hooks

// HookType represents the type of hook.
type HookType string

// Supported hook types. A hook is loaded from <hooks dir>/<type>.tengo.
const (
	PreScan     HookType = "pre-scan"
	PostRefresh HookType = "post-refresh"
)

// Types lists the supported hook types.
var Types = []HookType{PreScan, PostRefresh}

// IsValid reports whether t is a supported hook type.
func (t HookType) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// AddHook adds or replaces the hook of a type
	AddHook(hook Hook) error

	// RemoveHook removes the hook of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
