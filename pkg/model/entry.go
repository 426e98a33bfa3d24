package model

import (
	"path/filepath"
	"strings"
)

// Entry describes one discovered application package. Entries are values:
// they are built once by the loader and never modified afterwards.
type Entry struct {
	// Title is the display title resolved for the requested system language,
	// or the file name when the package carries no readable metadata.
	Title string `json:"title" yaml:"title"`
	// Author is the publisher resolved for the requested system language.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	// Version is the display version string from the package metadata.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// TitleID is the hex program id when it could be read.
	TitleID string `json:"title_id,omitempty" yaml:"title_id,omitempty"`
	// Path is the source path of the package and the entry's identity.
	Path   string `json:"path" yaml:"path"`
	Format Format `json:"format" yaml:"format"`
	// Icon holds the raw icon image (JPEG for NRO packages), if any.
	Icon []byte `json:"-" yaml:"-"`
}

// Equal reports whether every field of e and other matches.
func (e Entry) Equal(other Entry) bool {
	return e.Title == other.Title &&
		e.Author == other.Author &&
		e.Version == other.Version &&
		e.TitleID == other.TitleID &&
		e.Path == other.Path &&
		e.Format == other.Format &&
		string(e.Icon) == string(other.Icon)
}

// TitleFromPath derives a display title from a package path by stripping
// the directory and the extension.
func TitleFromPath(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
