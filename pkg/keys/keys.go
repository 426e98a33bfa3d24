// Package keys imports console key files found in scan locations and
// serves the merged keyset to the loader.
//
// Key files are plain text with one "name = hex" pair per line. Blank lines
// and lines starting with ';' or '#' are ignored.
package keys

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/hashicorp/go-multierror"
)

// Key file names recognised at a location root.
const (
	ProdKeysFile  = "prod.keys"
	TitleKeysFile = "title.keys"
)

// Files lists the key files imported from each location.
var Files = []string{ProdKeysFile, TitleKeysFile}

var keyNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// keyLengths holds the required size in bytes of keys with a fixed length.
var keyLengths = map[string]int{
	"header_key": 32,
}

// Keyset maps lower-case key names to key material.
type Keyset map[string][]byte

// Key implements loader.Keyset.
func (k Keyset) Key(name string) ([]byte, bool) {
	v, ok := k[strings.ToLower(name)]
	return v, ok
}

// Names returns the key names in sorted order.
func (k Keyset) Names() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every key of other into k, overwriting existing values.
// It returns the number of keys that were added or changed.
func (k Keyset) Merge(other Keyset) int {
	changed := 0
	for name, value := range other {
		if existing, ok := k[name]; ok && bytes.Equal(existing, value) {
			continue
		}
		k[name] = value
		changed++
	}
	return changed
}

// Parse reads a key file. Well-formed lines are returned even when others
// are malformed; the malformed lines are reported together in the error.
// source names the file in error messages.
func Parse(r io.Reader, source string) (Keyset, error) {
	keys := make(Keyset)
	var result *multierror.Error

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}

		name, value, ok := strings.Cut(text, "=")
		if !ok {
			result = multierror.Append(result, errutils.ErrInvalidKeyLine(source, line, "missing '='"))
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		if !keyNamePattern.MatchString(name) {
			result = multierror.Append(result, errutils.ErrInvalidKeyLine(source, line, fmt.Sprintf("invalid key name %q", name)))
			continue
		}
		material, err := hex.DecodeString(value)
		if err != nil || len(material) == 0 {
			result = multierror.Append(result, errutils.ErrInvalidKeyLine(source, line, "value is not hex"))
			continue
		}
		if want, ok := keyLengths[name]; ok && len(material) != want {
			result = multierror.Append(result, errutils.ErrInvalidKeyLine(source, line,
				fmt.Sprintf("%s must be %d bytes, got %d", name, want, len(material))))
			continue
		}
		keys[name] = material
	}
	if err := scanner.Err(); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %s: %w", errutils.ErrInvalidKeyFile, source, err))
	}

	return keys, result.ErrorOrNil()
}

// Format writes keys in key file syntax, sorted by name.
func Format(w io.Writer, keys Keyset) error {
	for _, name := range keys.Names() {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, hex.EncodeToString(keys[name])); err != nil {
			return err
		}
	}
	return nil
}
