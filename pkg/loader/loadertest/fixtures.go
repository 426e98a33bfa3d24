// Package loadertest builds minimal synthetic packages for tests.
package loadertest

import (
	"encoding/binary"
)

// Layout constants mirrored from the loader.
const (
	nroImageSize   = 0x100
	assetHeader    = 0x38
	nacpSize       = 0x4000
	nacpTitleSize  = 0x300
	nacpNameSize   = 0x200
	versionOffset  = 0x3060
	xciMagicOffset = 0x100
)

// NRO describes the metadata embedded in a synthetic NRO.
type NRO struct {
	// Titles maps NACP title slots to name/publisher pairs.
	Titles  map[int][2]string
	Version string
	Icon    []byte
	// NoAssets omits the asset section entirely.
	NoAssets bool
	// NACPOffset and IconOffset replace the offsets written to the asset
	// header when non-zero.
	NACPOffset uint64
	IconOffset uint64
}

// BuildNRO returns the bytes of an NRO carrying n's metadata.
func BuildNRO(n NRO) []byte {
	image := make([]byte, nroImageSize)
	copy(image[0x10:], "NRO0")
	binary.LittleEndian.PutUint32(image[0x18:], nroImageSize)
	if n.NoAssets {
		return image
	}

	nacp := make([]byte, nacpSize)
	for slot, title := range n.Titles {
		base := slot * nacpTitleSize
		copy(nacp[base:base+nacpNameSize-1], title[0])
		copy(nacp[base+nacpNameSize:base+nacpTitleSize-1], title[1])
	}
	copy(nacp[versionOffset:versionOffset+0xF], n.Version)

	iconOffset := uint64(assetHeader)
	nacpOffset := iconOffset + uint64(len(n.Icon))

	if n.IconOffset != 0 {
		iconOffset = n.IconOffset
	}
	if n.NACPOffset != 0 {
		nacpOffset = n.NACPOffset
	}

	asset := make([]byte, assetHeader)
	copy(asset, "ASET")
	binary.LittleEndian.PutUint64(asset[0x08:], iconOffset)
	binary.LittleEndian.PutUint64(asset[0x10:], uint64(len(n.Icon)))
	binary.LittleEndian.PutUint64(asset[0x18:], nacpOffset)
	binary.LittleEndian.PutUint64(asset[0x20:], nacpSize)

	out := append(image, asset...)
	out = append(out, n.Icon...)
	return append(out, nacp...)
}

// BuildNSO returns a minimal NSO image.
func BuildNSO() []byte {
	out := make([]byte, 0x100)
	copy(out, "NSO0")
	return out
}

// BuildNSP returns a minimal PFS0 container.
func BuildNSP() []byte {
	out := make([]byte, 0x20)
	copy(out, "PFS0")
	return out
}

// BuildXCI returns a minimal gamecard image header.
func BuildXCI() []byte {
	out := make([]byte, 0x200)
	copy(out[xciMagicOffset:], "HEAD")
	return out
}
