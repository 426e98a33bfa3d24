// Package fsutil provides file system helpers shared by the catalog cache,
// the key store and the configuration layer.
package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  = 0o600 // -rw-------: For key material

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModePrivate = 0o700 // drwx------: For private directories (owner only)
)
