// Package location resolves configured scan locations into file systems.
// A location is a directory, an archive holding packages, or a single
// package file; archives are opened read-only through mholt/archives.
package location

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/mholt/archives"
	"github.com/mitchellh/go-homedir"
)

const fileScheme = "file://"

// Kind tells how a location is backed.
type Kind int

// Location kinds.
const (
	KindDirectory Kind = iota
	KindArchive
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindArchive:
		return "archive"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Location is an opened scan root. Names passed to its methods are
// slash-separated paths relative to the root, as produced by fs.WalkDir.
type Location struct {
	// Name is the location as configured.
	Name string
	// Root is the resolved absolute path.
	Root string
	Kind Kind
	FS   fs.FS
}

// Resolve turns a configured location into an absolute path. It accepts
// file:// URIs and expands a leading "~".
func Resolve(location string) (string, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return "", errutils.ErrEmptyLocation
	}
	trimmed = strings.TrimPrefix(trimmed, fileScheme)

	expanded, err := homedir.Expand(trimmed)
	if err != nil {
		return "", errutils.ErrLocationUnresolvableWithName(location, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errutils.ErrLocationUnresolvableWithName(location, err)
	}
	return abs, nil
}

// Open resolves location and opens it for walking. The caller must Close
// the returned Location.
func Open(ctx context.Context, location string) (*Location, error) {
	root, err := Resolve(location)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errutils.ErrLocationUnresolvableWithName(location, err)
	}

	loc := &Location{Name: location, Root: root}
	switch {
	case info.IsDir():
		loc.Kind = KindDirectory
		loc.FS = os.DirFS(root)
		return loc, nil
	case isPackageFile(root):
		loc.Kind = KindFile
		loc.FS = singleFileFS{path: root}
		return loc, nil
	}

	fsys, err := archives.FileSystem(ctx, root, nil)
	if err != nil {
		return nil, errutils.ErrLocationUnresolvableWithName(location, err)
	}
	rootInfo, err := fs.Stat(fsys, ".")
	if err != nil || !rootInfo.IsDir() {
		closeFS(fsys)
		return nil, errutils.ErrLocationUnresolvableWithName(location, errors.New("not a directory or archive"))
	}
	loc.Kind = KindArchive
	loc.FS = fsys
	return loc, nil
}

// Close releases the archive backing the location, if any.
func (l *Location) Close() error {
	if closer, ok := l.FS.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SourcePath returns the path recorded in catalog entries for name.
// Files inside an archive are addressed as <archive>/<name>.
func (l *Location) SourcePath(name string) string {
	switch l.Kind {
	case KindFile:
		return l.Root
	case KindArchive:
		return l.Root + "/" + name
	default:
		return filepath.Join(l.Root, filepath.FromSlash(name))
	}
}

// ReadFile reads name from the location root.
func (l *Location) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(l.FS, name)
}

func isPackageFile(name string) bool {
	_, ok := model.ParseFormat(filepath.Ext(name))
	return ok
}

func closeFS(fsys fs.FS) {
	if closer, ok := fsys.(io.Closer); ok {
		_ = closer.Close()
	}
}

// singleFileFS exposes one file as the only entry of a flat file system
// whose name is the file's base name.
type singleFileFS struct {
	path string
}

func (s singleFileFS) Open(name string) (fs.File, error) {
	if name != "." && name != path.Base(filepath.ToSlash(s.path)) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if name == "." {
		return os.DirFS(filepath.Dir(s.path)).Open(".")
	}
	return os.Open(s.path)
}

// ReadDir lists the single file.
func (s singleFileFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	return []fs.DirEntry{fs.FileInfoToDirEntry(info)}, nil
}
