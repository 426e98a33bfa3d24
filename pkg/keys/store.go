package keys

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/fsutil"
	"github.com/glorpus-work/romcat/pkg/location"
	"github.com/hashicorp/go-multierror"
)

// Store keeps imported key files in a directory and loads them on demand.
// It is safe for concurrent use.
type Store struct {
	dir string

	mu     sync.Mutex
	loaded Keyset
}

// NewStore returns a store rooted at dir. The directory is created on the
// first import.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the imported key files.
func (s *Store) Dir() string {
	return s.dir
}

// Import merges the key files found at the root of location into the store.
// Malformed key files are logged and skipped; only failures to read the
// location or to write the store are returned.
func (s *Store) Import(ctx context.Context, loc string) error {
	opened, err := location.Open(ctx, loc)
	if err != nil {
		return errutils.ErrKeyImportWithLocation(loc, err)
	}
	defer func() { _ = opened.Close() }()

	if opened.Kind == location.KindFile {
		return nil
	}

	var warnings *multierror.Error
	for _, name := range Files {
		data, err := opened.ReadFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return errutils.ErrKeyImportWithLocation(loc, err)
		}

		imported, parseErr := Parse(bytes.NewReader(data), opened.SourcePath(name))
		if parseErr != nil {
			warnings = multierror.Append(warnings, parseErr)
		}
		if len(imported) == 0 {
			continue
		}

		changed, err := s.merge(name, imported)
		if err != nil {
			return errutils.ErrKeyImportWithLocation(loc, err)
		}
		logger.Debug("Imported keys", logger.Fields{
			"location": loc,
			"file":     name,
			"keys":     len(imported),
			"changed":  changed,
		})
	}

	if err := warnings.ErrorOrNil(); err != nil {
		logger.Warn("Some keys could not be imported", logger.Fields{
			"location": loc,
			"error":    err.Error(),
		})
	}
	return nil
}

// merge folds imported into the stored file of the same name.
func (s *Store) merge(name string, imported Keyset) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	existing, err := readKeyFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	if existing == nil {
		existing = make(Keyset)
	}

	changed := existing.Merge(imported)
	if changed == 0 {
		return 0, nil
	}

	if err := fsutil.EnsureDir(s.dir); err != nil {
		return 0, err
	}
	err = fsutil.WriteFileAtomic(path, fsutil.FileModeSecure, func(w io.Writer) error {
		return Format(w, existing)
	})
	if err != nil {
		return 0, err
	}
	s.loaded = nil
	return changed, nil
}

// Keys returns the merged keyset of every stored key file. A missing store
// yields an empty keyset.
func (s *Store) Keys() (Keyset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil {
		return s.loaded, nil
	}

	merged := make(Keyset)
	for _, name := range Files {
		keys, err := readKeyFile(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		merged.Merge(keys)
	}
	s.loaded = merged
	return merged, nil
}

// Key implements loader.Keyset. Load failures read as a missing key.
func (s *Store) Key(name string) ([]byte, bool) {
	keys, err := s.Keys()
	if err != nil {
		logger.Warn("Failed to load key store", logger.Fields{"dir": s.dir, "error": err.Error()})
		return nil, false
	}
	return keys.Key(name)
}

// readKeyFile loads a stored key file. Stored files are written by Format,
// so any malformed line is skipped with a warning.
func readKeyFile(path string) (Keyset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	keys, err := Parse(f, path)
	if err != nil {
		logger.Warn("Stored key file has invalid lines", logger.Fields{"path": path, "error": err.Error()})
	}
	return keys, nil
}
