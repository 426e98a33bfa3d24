package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/glorpus-work/romcat/pkg/errutils"
)

// NRO layout.
const (
	nroSizeOffset   = 0x18
	assetHeaderSize = 0x38
	assetMagic      = "ASET"
)

// NACP layout.
const (
	nacpSize                 = 0x4000
	nacpTitleCount           = 16
	nacpTitleSize            = 0x300
	nacpNameSize             = 0x200
	nacpPublisherSize        = 0x100
	nacpDisplayVersionOffset = 0x3060
	nacpDisplayVersionSize   = 0x10

	// maxIconSize bounds the icon read; real icons are 256x256 JPEGs.
	maxIconSize = 0x40000
)

// Title is one localized title/publisher pair from the NACP.
type Title struct {
	Name      string
	Publisher string
}

// Metadata is the control data of an application package.
type Metadata struct {
	Titles         [nacpTitleCount]Title
	DisplayVersion string
	Icon           []byte
}

// Title returns the title for lang. An empty slot falls back to the first
// non-empty title; ok is false when the NACP has no titles at all.
func (m *Metadata) Title(lang SystemLanguage) (Title, bool) {
	if t := m.Titles[lang.TitleSlot()]; t.Name != "" {
		return t, true
	}
	for _, t := range m.Titles {
		if t.Name != "" {
			return t, true
		}
	}
	return Title{}, false
}

// ParseNACP decodes a raw NACP block.
func ParseNACP(data []byte) (*Metadata, error) {
	if len(data) < nacpDisplayVersionOffset+nacpDisplayVersionSize {
		return nil, fmt.Errorf("%w: nacp is %d bytes", errutils.ErrInvalidPackage, len(data))
	}

	meta := &Metadata{}
	for i := 0; i < nacpTitleCount; i++ {
		base := i * nacpTitleSize
		meta.Titles[i] = Title{
			Name:      cString(data[base : base+nacpNameSize]),
			Publisher: cString(data[base+nacpNameSize : base+nacpNameSize+nacpPublisherSize]),
		}
	}
	meta.DisplayVersion = cString(data[nacpDisplayVersionOffset : nacpDisplayVersionOffset+nacpDisplayVersionSize])
	return meta, nil
}

// assetSection locates one blob inside the NRO asset area, relative to the
// asset header.
type assetSection struct {
	Offset uint64
	Size   uint64
}

// within reports whether n bytes at the section offset fit in limit bytes.
func (s assetSection) within(limit int64, n uint64) bool {
	if limit < 0 {
		return false
	}
	return s.Offset <= uint64(limit) && n <= uint64(limit)-s.Offset
}

type assetHeader struct {
	Magic   [4]byte
	Version uint32
	Icon    assetSection
	NACP    assetSection
	RomFS   assetSection
}

// readNROMetadata reads the NACP and icon from the asset area that follows
// the NRO image. NROs without assets yield errutils.ErrInvalidPackage.
func readNROMetadata(r io.ReaderAt, size int64) (*Metadata, error) {
	raw, err := readAt(r, nroSizeOffset, 4)
	if err != nil {
		return nil, err
	}
	assetOffset := int64(binary.LittleEndian.Uint32(raw))
	if assetOffset+assetHeaderSize > size {
		return nil, fmt.Errorf("%w: nro has no asset section", errutils.ErrInvalidPackage)
	}

	raw, err = readAt(r, assetOffset, assetHeaderSize)
	if err != nil {
		return nil, err
	}
	var header assetHeader
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrInvalidPackage, err)
	}
	if string(header.Magic[:]) != assetMagic {
		return nil, fmt.Errorf("%w: bad asset magic", errutils.ErrInvalidPackage)
	}
	if header.NACP.Size < nacpSize {
		return nil, fmt.Errorf("%w: nro carries no nacp", errutils.ErrInvalidPackage)
	}

	assetLimit := size - assetOffset
	if !header.NACP.within(assetLimit, nacpSize) {
		return nil, fmt.Errorf("%w: nacp at 0x%x is outside the file", errutils.ErrInvalidPackage, header.NACP.Offset)
	}

	nacp, err := readAt(r, assetOffset+int64(header.NACP.Offset), nacpSize)
	if err != nil {
		return nil, err
	}
	meta, err := ParseNACP(nacp)
	if err != nil {
		return nil, err
	}

	if header.Icon.Size > 0 && header.Icon.Size <= maxIconSize && header.Icon.within(assetLimit, header.Icon.Size) {
		icon, err := readAt(r, assetOffset+int64(header.Icon.Offset), int(header.Icon.Size))
		if err == nil {
			meta.Icon = icon
		}
	}

	return meta, nil
}

// cString decodes a NUL-terminated UTF-8 field.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
