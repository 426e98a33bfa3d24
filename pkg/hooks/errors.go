package hooks

import (
	"fmt"

	"github.com/glorpus-work/romcat/pkg/errutils"
)

// ErrHookTypeEmpty is returned when a hook type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

// ErrUnsupportedHookType is returned for a hook type the refresh never runs.
func ErrUnsupportedHookType(hookType HookType) error {
	return errutils.Wrapf(errutils.ErrHookLoad, "unsupported hook type: %s", hookType)
}
