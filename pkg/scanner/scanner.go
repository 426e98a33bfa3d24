// Package scanner enumerates the packages stored in one location and groups
// them into a catalog.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/location"
	"github.com/glorpus-work/romcat/pkg/model"
)

// maxBufferedPackage bounds how much of a package is read into memory when
// its file does not support random access (files inside compressed
// archives). Packages larger than this are loaded from their prefix.
const maxBufferedPackage = 64 << 20

// FSScanner scans directories, archives and single package files.
type FSScanner struct {
	keys loader.Keyset
}

// New returns a scanner that uses keys for encrypted formats. keys may be nil.
func New(keys loader.Keyset) *FSScanner {
	return &FSScanner{keys: keys}
}

// Scan walks loc and returns the packages found, grouped by format in walk
// order. Files that are not packages are skipped; any I/O failure aborts the
// scan with an error wrapping errutils.ErrScan.
func (s *FSScanner) Scan(ctx context.Context, loc string, lang loader.SystemLanguage) (model.Catalog, error) {
	opened, err := location.Open(ctx, loc)
	if err != nil {
		return nil, errutils.ErrScanWithLocation(loc, err)
	}
	defer func() { _ = opened.Close() }()

	opts := loader.Options{Language: lang, Keys: s.keys}
	result := model.NewCatalog()
	skipped := 0

	err = fs.WalkDir(opened.FS, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !loader.IsCandidate(name) {
			return nil
		}

		entry, err := loadEntry(opened, name, opts)
		switch {
		case err == nil:
			result.Add(entry)
		case errors.Is(err, errutils.ErrUnknownFormat), errors.Is(err, errutils.ErrInvalidPackage):
			skipped++
			logger.Debug("Skipping file", logger.Fields{"path": opened.SourcePath(name), "reason": err.Error()})
		default:
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, errutils.ErrScanWithLocation(loc, err)
	}

	logger.Debug("Scanned location", logger.Fields{
		"location": loc,
		"kind":     opened.Kind.String(),
		"entries":  result.Len(),
		"skipped":  skipped,
	})
	return result, nil
}

func loadEntry(loc *location.Location, name string, opts loader.Options) (model.Entry, error) {
	f, err := loc.FS.Open(name)
	if err != nil {
		return model.Entry{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return model.Entry{}, err
	}

	r, size, err := readerAt(f, info.Size())
	if err != nil {
		return model.Entry{}, err
	}
	return loader.Load(r, size, loc.SourcePath(path.Clean(name)), opts)
}

// readerAt returns random access to f, buffering a bounded prefix when the
// file only supports sequential reads.
func readerAt(f fs.File, size int64) (io.ReaderAt, int64, error) {
	if ra, ok := f.(io.ReaderAt); ok {
		return ra, size, nil
	}
	data, err := io.ReadAll(io.LimitReader(f, maxBufferedPackage))
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
