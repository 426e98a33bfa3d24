// Package cache persists the catalog to a single binary file and manages
// that file for the CLI.
//
// File layout:
//
//	magic   "RCAT"
//	uint16  length of the schema version, big endian
//	[]byte  schema version (semver)
//	[32]    BLAKE2b-256 digest of the body
//	body    zstd-compressed gob document
//
// The document records the names of every format the writer knew about;
// a reader that does not know one of them rejects the file as incompatible.
package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/hashicorp/go-version"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// SchemaVersion is written into every cache file. Readers accept any file
// whose schema satisfies schemaConstraint.
const SchemaVersion = "1.0.0"

const (
	magic            = "RCAT"
	schemaConstraint = ">= 1.0, < 2.0"
	maxSchemaLength  = 64
	maxDecodedSize   = 1 << 30
)

var compatibleSchemas = version.MustConstraints(version.NewConstraint(schemaConstraint))

// Header is the uncompressed prefix of a cache file.
type Header struct {
	Schema string
	Digest [blake2b.Size256]byte
}

type document struct {
	Schema  string
	Formats []string
	Groups  []group
}

type group struct {
	Format  string
	Entries []model.Entry
}

// Encode writes catalog to w in the cache file format. Groups are written
// in display order.
func Encode(w io.Writer, catalog model.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}

	doc := document{Schema: SchemaVersion}
	for _, f := range model.Formats() {
		doc.Formats = append(doc.Formats, f.String())
	}
	for _, f := range catalog.Formats() {
		doc.Groups = append(doc.Groups, group{Format: f.String(), Entries: catalog[f]})
	}
	return encodeDocument(w, doc)
}

func encodeDocument(w io.Writer, doc document) error {
	var body bytes.Buffer
	enc, err := zstd.NewWriter(&body)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(enc).Encode(doc); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, uint16(len(doc.Schema))); err != nil {
		return err
	}
	if _, err := bw.WriteString(doc.Schema); err != nil {
		return err
	}
	digest := blake2b.Sum256(body.Bytes())
	if _, err := bw.Write(digest[:]); err != nil {
		return err
	}
	if _, err := bw.Write(body.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeHeader parses and checks the header at the start of data. It returns
// the header and the remaining body.
func DecodeHeader(data []byte) (Header, []byte, error) {
	var h Header
	r := bytes.NewReader(data)

	prefix := make([]byte, len(magic))
	if _, err := io.ReadFull(r, prefix); err != nil || string(prefix) != magic {
		return h, nil, errutils.ErrCacheCorruptWithReason("bad magic")
	}

	var schemaLen uint16
	if err := binary.Read(r, binary.BigEndian, &schemaLen); err != nil {
		return h, nil, errutils.ErrCacheCorruptWithReason("truncated header")
	}
	if schemaLen == 0 || schemaLen > maxSchemaLength {
		return h, nil, errutils.ErrCacheCorruptWithReason("bad schema length")
	}
	schema := make([]byte, schemaLen)
	if _, err := io.ReadFull(r, schema); err != nil {
		return h, nil, errutils.ErrCacheCorruptWithReason("truncated header")
	}
	h.Schema = string(schema)

	if _, err := io.ReadFull(r, h.Digest[:]); err != nil {
		return h, nil, errutils.ErrCacheCorruptWithReason("truncated header")
	}

	v, err := version.NewVersion(h.Schema)
	if err != nil {
		return h, nil, errutils.ErrCacheCorruptWithReason(fmt.Sprintf("bad schema version %q", h.Schema))
	}
	if !compatibleSchemas.Check(v) {
		return h, nil, errutils.ErrCacheIncompatibleWithReason(fmt.Sprintf("schema %s", h.Schema))
	}

	return h, data[len(data)-r.Len():], nil
}

// Decode parses a complete cache file.
func Decode(data []byte) (model.Catalog, error) {
	header, body, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if blake2b.Sum256(body) != header.Digest {
		return nil, errutils.ErrCacheCorruptWithReason("digest mismatch")
	}

	dec, err := zstd.NewReader(bytes.NewReader(body), zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return nil, errutils.ErrCacheCorruptWithReason(err.Error())
	}
	defer dec.Close()

	var doc document
	if err := gob.NewDecoder(dec).Decode(&doc); err != nil {
		return nil, errutils.ErrCacheCorruptWithReason(err.Error())
	}

	for _, name := range doc.Formats {
		if _, ok := model.ParseFormat(name); !ok {
			return nil, errutils.ErrCacheIncompatibleWithReason(fmt.Sprintf("unknown format %q", name))
		}
	}

	catalog := model.NewCatalog()
	for _, g := range doc.Groups {
		f, ok := model.ParseFormat(g.Format)
		if !ok {
			return nil, errutils.ErrCacheIncompatibleWithReason(fmt.Sprintf("unknown format %q", g.Format))
		}
		if len(g.Entries) == 0 {
			return nil, errutils.ErrCacheCorruptWithReason(fmt.Sprintf("empty group %s", f))
		}
		if _, dup := catalog[f]; dup {
			return nil, errutils.ErrCacheCorruptWithReason(fmt.Sprintf("duplicate group %s", f))
		}
		catalog[f] = g.Entries
	}
	if err := catalog.Validate(); err != nil {
		return nil, errutils.ErrCacheCorruptWithReason(err.Error())
	}
	return catalog, nil
}
