package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/fsutil"
	"github.com/glorpus-work/romcat/pkg/model"
)

// File is the catalog cache stored at a fixed path.
type File struct {
	path string
}

// NewFile returns the cache file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the cache file.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the cache file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Read loads the cached catalog. An absent file yields errutils.ErrCacheMiss;
// unreadable content yields errutils.ErrCacheCorrupt, or
// errutils.ErrCacheIncompatible when it was written by an incompatible
// version.
func (f *File) Read() (model.Catalog, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errutils.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrCacheCorrupt, err)
	}
	return Decode(data)
}

// Write replaces the cache file with catalog. Readers observe either the
// previous file or the new one, never a partial write.
func (f *File) Write(catalog model.Catalog) error {
	if err := fsutil.EnsureFileDir(f.path); err != nil {
		return fmt.Errorf("%w: %w", errutils.ErrCacheWrite, err)
	}
	err := fsutil.WriteFileAtomic(f.path, fsutil.FileModeDefault, func(w io.Writer) error {
		return Encode(w, catalog)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errutils.ErrCacheWrite, err)
	}
	return nil
}

// Remove deletes the cache file. It returns the number of bytes freed; a
// missing file frees nothing and is not an error.
func (f *File) Remove() (int64, error) {
	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := os.Remove(f.path); err != nil {
		return 0, err
	}
	return info.Size(), nil
}
