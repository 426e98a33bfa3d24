package hooks

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/hashicorp/go-multierror"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadHooksFromDir loads every <hook-type>.tengo file in dir into manager.
// A missing directory loads nothing. Files of unknown hook types are
// skipped; unreadable files are reported together after the rest loaded.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errutils.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	var result *multierror.Error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.IsValid() {
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			result = multierror.Append(result, errutils.Wrapf(errutils.ErrHookLoad, "error reading hook file %s: %v", hookPath, err))
			continue
		}

		if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			result = multierror.Append(result, errutils.Wrapf(err, "error adding hook %s", hookType))
		}
	}

	return result.ErrorOrNil()
}

// HookPath returns the script path for hookType inside dir.
func HookPath(dir string, hookType HookType) string {
	return filepath.Join(dir, string(hookType)+HookFileExtension)
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreScan:
		return `// Pre-scan hook
// This script runs before each location is scanned.
// Available variables:
// - location: string - the location about to be scanned
// - systemLanguage: int - the system language code used for titles
//
// Set err to a message to report a problem. Hook failures are logged and
// never stop the refresh.

// Example: warn when a location is missing
/*
os := import("os")
if is_error(os.stat(location)) {
    err = "location not mounted: " + location
}
*/`

	case PostRefresh:
		return `// Post-refresh hook
// This script runs after the catalog was loaded.
// Available variables:
// - entryCount: int - total number of entries
// - formats: map - entry count per format name, e.g. formats["NSP"]
// - fromCache: bool - whether the catalog came from the cache file

// Example: print a summary
/*
fmt := import("fmt")
fmt.println("catalog has ", entryCount, " entries")
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
