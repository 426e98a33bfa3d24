// Package model provides the data structures shared by the scanner, the
// cache codec and the refresh controller: package formats, catalog entries,
// the grouped catalog and the refresh state.
package model

import (
	"strings"
)

// Format identifies the on-disk packaging scheme of a discovered package.
type Format string

// Supported package formats. The set is closed; Formats returns them in
// display order.
const (
	FormatNRO Format = "NRO"
	FormatNSO Format = "NSO"
	FormatNCA Format = "NCA"
	FormatXCI Format = "XCI"
	FormatNSP Format = "NSP"
)

var formats = []Format{FormatNRO, FormatNSO, FormatNCA, FormatXCI, FormatNSP}

// Formats returns every known format in display order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// IsValid reports whether f is one of the known formats.
func (f Format) IsValid() bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

// Extension returns the conventional lower-case file extension, including the dot.
func (f Format) Extension() string {
	return "." + strings.ToLower(string(f))
}

func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a format name or file extension case-insensitively.
// The boolean is false when the name does not match a known format.
func ParseFormat(name string) (Format, bool) {
	f := Format(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(name), ".")))
	if !f.IsValid() {
		return "", false
	}
	return f, true
}

// order returns the display position of f, or len(formats) for unknown values.
func (f Format) order() int {
	for i, known := range formats {
		if f == known {
			return i
		}
	}
	return len(formats)
}
