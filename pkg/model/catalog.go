package model

import (
	"fmt"
	"sort"
)

// Catalog groups discovered entries by format. Every present key maps to a
// non-empty slice whose order is discovery order.
type Catalog map[Format][]Entry

// NewCatalog returns an empty catalog.
func NewCatalog() Catalog {
	return make(Catalog)
}

// Add appends e to the group of its format.
func (c Catalog) Add(e Entry) {
	c[e.Format] = append(c[e.Format], e)
}

// Formats returns the formats present in c, in display order.
func (c Catalog) Formats() []Format {
	present := make([]Format, 0, len(c))
	for f, entries := range c {
		if len(entries) > 0 {
			present = append(present, f)
		}
	}
	sort.SliceStable(present, func(i, j int) bool {
		if present[i].order() != present[j].order() {
			return present[i].order() < present[j].order()
		}
		return present[i] < present[j]
	})
	return present
}

// Len returns the total number of entries across all formats.
func (c Catalog) Len() int {
	n := 0
	for _, entries := range c {
		n += len(entries)
	}
	return n
}

// Counts returns the number of entries per format.
func (c Catalog) Counts() map[Format]int {
	counts := make(map[Format]int, len(c))
	for f, entries := range c {
		if len(entries) > 0 {
			counts[f] = len(entries)
		}
	}
	return counts
}

// Clone returns a copy of c whose slices can be appended to without
// affecting c.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for f, entries := range c {
		if len(entries) == 0 {
			continue
		}
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		out[f] = cp
	}
	return out
}

// Only returns a catalog restricted to format f.
func (c Catalog) Only(f Format) Catalog {
	out := NewCatalog()
	if entries := c[f]; len(entries) > 0 {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		out[f] = cp
	}
	return out
}

// Equal reports whether c and other hold the same entries in the same order
// for every format.
func (c Catalog) Equal(other Catalog) bool {
	if len(c.Formats()) != len(other.Formats()) {
		return false
	}
	for f, entries := range c {
		theirs := other[f]
		if len(entries) != len(theirs) {
			return false
		}
		for i := range entries {
			if !entries[i].Equal(theirs[i]) {
				return false
			}
		}
	}
	return true
}

// Validate checks the catalog invariants: known formats, non-empty groups,
// and entries filed under their own format.
func (c Catalog) Validate() error {
	for f, entries := range c {
		if !f.IsValid() {
			return fmt.Errorf("unknown format %q in catalog", f)
		}
		if len(entries) == 0 {
			return fmt.Errorf("format %s has no entries", f)
		}
		for i, e := range entries {
			if e.Format != f {
				return fmt.Errorf("entry %d of %s (%s) has format %s", i, f, e.Path, e.Format)
			}
		}
	}
	return nil
}

// Merge returns the append-union of acc and addition: for every format in
// addition its entries are appended after acc's entries of that format, in
// addition's order. Neither argument is modified. Entries are not
// deduplicated, so scanning overlapping locations yields repeated entries.
//
// Merge is associative, so folding it left over per-location results gives
// the same catalog regardless of grouping.
func Merge(acc, addition Catalog) Catalog {
	out := acc.Clone()
	for f, entries := range addition {
		if len(entries) == 0 {
			continue
		}
		out[f] = append(out[f], entries...)
	}
	return out
}
