package loader

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/glorpus-work/romcat/pkg/errutils"
)

// HeaderKeyName is the keyset entry used to decrypt NCA headers.
const HeaderKeyName = "header_key"

// NCA header layout. Only the first two sectors are needed.
const (
	ncaSectorSize      = 0x200
	ncaHeaderReadSize  = 2 * ncaSectorSize
	ncaMagicOffset     = 0x200
	ncaProgramIDOffset = 0x210
	headerKeySize      = 32
)

type ncaHeader []byte

func (h ncaHeader) titleID() string {
	return fmt.Sprintf("%016X", binary.LittleEndian.Uint64(h[ncaProgramIDOffset:ncaProgramIDOffset+8]))
}

// readNCAHeader decrypts and validates the NCA header. Without a header key
// it returns errutils.ErrKeyNotFound; a header that does not decrypt to a
// known magic yields errutils.ErrInvalidPackage.
func readNCAHeader(r io.ReaderAt, size int64, keys Keyset) (ncaHeader, error) {
	if keys == nil {
		return nil, errutils.ErrKeyNotFoundWithName(HeaderKeyName)
	}
	key, ok := keys.Key(HeaderKeyName)
	if !ok {
		return nil, errutils.ErrKeyNotFoundWithName(HeaderKeyName)
	}
	if len(key) != headerKeySize {
		return nil, fmt.Errorf("%w: %s must be %d bytes", errutils.ErrInvalidKeyFile, HeaderKeyName, headerKeySize)
	}
	if size < ncaHeaderReadSize {
		return nil, fmt.Errorf("%w: nca header truncated", errutils.ErrInvalidPackage)
	}

	encrypted, err := readAt(r, 0, ncaHeaderReadSize)
	if err != nil {
		return nil, err
	}
	header, err := decryptSectors(key, encrypted, ncaSectorSize)
	if err != nil {
		return nil, err
	}

	switch magic := string(header[ncaMagicOffset : ncaMagicOffset+4]); magic {
	case "NCA3", "NCA2":
		return header, nil
	default:
		return nil, fmt.Errorf("%w: nca magic %q", errutils.ErrInvalidPackage, magic)
	}
}

// decryptSectors decrypts data with AES-128-XTS using key (data key followed
// by tweak key). Sector numbers start at zero and enter the tweak as a
// big-endian 128-bit integer, which is what sets this apart from IEEE
// P1619 and golang.org/x/crypto/xts.
func decryptSectors(key, data []byte, sectorSize int) ([]byte, error) {
	return xtsSectors(key, data, sectorSize, false)
}

func xtsSectors(key, data []byte, sectorSize int, encrypt bool) ([]byte, error) {
	if len(data)%sectorSize != 0 || sectorSize%aes.BlockSize != 0 {
		return nil, fmt.Errorf("xts: data length %d is not a multiple of sector size %d", len(data), sectorSize)
	}
	dataCipher, err := aes.NewCipher(key[:16])
	if err != nil {
		return nil, err
	}
	tweakCipher, err := aes.NewCipher(key[16:32])
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	for sector := 0; sector*sectorSize < len(data); sector++ {
		var tweak [aes.BlockSize]byte
		binary.BigEndian.PutUint64(tweak[8:], uint64(sector))
		tweakCipher.Encrypt(tweak[:], tweak[:])

		start := sector * sectorSize
		for off := start; off < start+sectorSize; off += aes.BlockSize {
			xtsBlock(dataCipher, out[off:off+aes.BlockSize], data[off:off+aes.BlockSize], &tweak, encrypt)
			mulAlpha(&tweak)
		}
	}
	return out, nil
}

func xtsBlock(c cipher.Block, dst, src []byte, tweak *[aes.BlockSize]byte, encrypt bool) {
	var buf [aes.BlockSize]byte
	for i := range buf {
		buf[i] = src[i] ^ tweak[i]
	}
	if encrypt {
		c.Encrypt(buf[:], buf[:])
	} else {
		c.Decrypt(buf[:], buf[:])
	}
	for i := range buf {
		dst[i] = buf[i] ^ tweak[i]
	}
}

// mulAlpha multiplies the tweak by x in GF(2^128).
func mulAlpha(t *[aes.BlockSize]byte) {
	var carry byte
	for i := range t {
		next := t[i] >> 7
		t[i] = t[i]<<1 | carry
		carry = next
	}
	if carry != 0 {
		t[0] ^= 0x87
	}
}
