// Package loader identifies application packages and extracts the metadata
// shown in the catalog. Formats are detected from their magic where one
// exists; NCA files are encrypted and are recognised by extension, with the
// header verified when a header key has been imported.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
)

// Header magics and their offsets.
const (
	nroMagic       = "NRO0"
	nroMagicOffset = 0x10
	nsoMagic       = "NSO0"
	pfs0Magic      = "PFS0"
	xciMagic       = "HEAD"
	xciMagicOffset = 0x100
)

// Keyset provides key material to the loader.
type Keyset interface {
	Key(name string) ([]byte, bool)
}

// Options control how package metadata is resolved.
type Options struct {
	// Language selects the localized title and publisher.
	Language SystemLanguage
	// Keys supplies key material for encrypted formats; may be nil.
	Keys Keyset
}

// IsCandidate reports whether name has the extension of a supported format.
// The scanner only opens candidates.
func IsCandidate(name string) bool {
	_, ok := model.ParseFormat(path.Ext(name))
	return ok
}

// Detect identifies the format of the package in r. Magic numbers take
// precedence over the extension of name; NCA is identified by extension.
func Detect(r io.ReaderAt, size int64, name string) (model.Format, error) {
	probes := []struct {
		format model.Format
		offset int64
		magic  string
	}{
		{model.FormatNRO, nroMagicOffset, nroMagic},
		{model.FormatNSO, 0, nsoMagic},
		{model.FormatNSP, 0, pfs0Magic},
		{model.FormatXCI, xciMagicOffset, xciMagic},
	}

	for _, probe := range probes {
		if size < probe.offset+int64(len(probe.magic)) {
			continue
		}
		buf, err := readAt(r, probe.offset, len(probe.magic))
		if err != nil {
			return "", err
		}
		if string(buf) == probe.magic {
			return probe.format, nil
		}
	}

	if strings.EqualFold(path.Ext(name), model.FormatNCA.Extension()) {
		return model.FormatNCA, nil
	}

	return "", errutils.ErrUnknownFormatWithName(name)
}

// Load detects the format of the package in r and builds its catalog entry.
// Missing or unreadable metadata and unusable keys degrade the entry to its
// file name; only unrecognised content (errutils.ErrUnknownFormat) and I/O
// failures are returned as errors.
func Load(r io.ReaderAt, size int64, sourcePath string, opts Options) (model.Entry, error) {
	format, err := Detect(r, size, sourcePath)
	if err != nil {
		return model.Entry{}, err
	}

	entry := model.Entry{
		Title:  model.TitleFromPath(sourcePath),
		Path:   sourcePath,
		Format: format,
	}

	switch format {
	case model.FormatNRO:
		meta, err := readNROMetadata(r, size)
		if err != nil {
			if !errors.Is(err, errutils.ErrInvalidPackage) {
				return model.Entry{}, err
			}
			break
		}
		applyMetadata(&entry, meta, opts.Language)
		entry.Icon = meta.Icon
	case model.FormatNCA:
		header, err := readNCAHeader(r, size, opts.Keys)
		if err != nil {
			if !errors.Is(err, errutils.ErrInvalidPackage) && !errors.Is(err, errutils.ErrKeyNotFound) &&
				!errors.Is(err, errutils.ErrInvalidKeyFile) {
				return model.Entry{}, err
			}
			break
		}
		entry.TitleID = header.titleID()
	}

	return entry, nil
}

// applyMetadata fills the localized fields of e from meta.
func applyMetadata(e *model.Entry, meta *Metadata, lang SystemLanguage) {
	if title, ok := meta.Title(lang); ok {
		e.Title = title.Name
		e.Author = title.Publisher
	}
	e.Version = meta.DisplayVersion
}

// readAt reads exactly n bytes at off. Short reads mean the package is
// truncated and are reported as errutils.ErrInvalidPackage.
func readAt(r io.ReaderAt, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, off)
	if read == n {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: short read at 0x%x", errutils.ErrInvalidPackage, off)
	}
	return nil, err
}
