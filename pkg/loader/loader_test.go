package loader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/loader/loadertest"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys map[string][]byte

func (k staticKeys) Key(name string) ([]byte, bool) {
	v, ok := k[name]
	return v, ok
}

var testHeaderKey = bytes.Repeat([]byte{0x5A, 0xA5, 0x11, 0x22}, 8)

func buildNCA(t *testing.T, magic string, programID uint64) []byte {
	t.Helper()
	plain := make([]byte, ncaHeaderReadSize)
	copy(plain[ncaMagicOffset:], magic)
	binary.LittleEndian.PutUint64(plain[ncaProgramIDOffset:], programID)
	encrypted, err := xtsSectors(testHeaderKey, plain, ncaSectorSize, true)
	require.NoError(t, err)
	return encrypted
}

func load(t *testing.T, data []byte, path string, opts Options) (model.Entry, error) {
	t.Helper()
	return Load(bytes.NewReader(data), int64(len(data)), path, opts)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		path    string
		want    model.Format
		wantErr error
	}{
		{"nro by magic", loadertest.BuildNRO(loadertest.NRO{NoAssets: true}), "hb.nro", model.FormatNRO, nil},
		{"nso by magic", loadertest.BuildNSO(), "main", model.FormatNSO, nil},
		{"nsp by magic", loadertest.BuildNSP(), "game.nsp", model.FormatNSP, nil},
		{"xci by magic", loadertest.BuildXCI(), "card.xci", model.FormatXCI, nil},
		{"magic wins over extension", loadertest.BuildNSP(), "mislabeled.xci", model.FormatNSP, nil},
		{"nca by extension", make([]byte, 0x40), "content.NCA", model.FormatNCA, nil},
		{"unknown content", make([]byte, 0x200), "notes.nro", "", errutils.ErrUnknownFormat},
		{"empty file", nil, "empty.nsp", "", errutils.ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(bytes.NewReader(tt.data), int64(len(tt.data)), tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCandidate(t *testing.T) {
	assert.True(t, IsCandidate("a/b/game.nsp"))
	assert.True(t, IsCandidate("HOMEBREW.NRO"))
	assert.False(t, IsCandidate("readme.txt"))
	assert.False(t, IsCandidate("nro"))
}

func TestLoadNRO(t *testing.T) {
	icon := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	data := loadertest.BuildNRO(loadertest.NRO{
		Titles: map[int][2]string{
			0: {"Checkpoint", "Bernardo Giordano"},
			2: {"チェックポイント", "ベルナルド"},
		},
		Version: "3.8.0",
		Icon:    icon,
	})

	t.Run("requested language", func(t *testing.T) {
		entry, err := load(t, data, "/sd/switch/checkpoint.nro", Options{Language: Japanese})
		require.NoError(t, err)
		assert.Equal(t, "チェックポイント", entry.Title)
		assert.Equal(t, "ベルナルド", entry.Author)
		assert.Equal(t, "3.8.0", entry.Version)
		assert.Equal(t, model.FormatNRO, entry.Format)
		assert.Equal(t, "/sd/switch/checkpoint.nro", entry.Path)
		assert.Equal(t, icon, entry.Icon)
	})

	t.Run("empty slot falls back to first title", func(t *testing.T) {
		entry, err := load(t, data, "checkpoint.nro", Options{Language: German})
		require.NoError(t, err)
		assert.Equal(t, "Checkpoint", entry.Title)
		assert.Equal(t, "Bernardo Giordano", entry.Author)
	})

	t.Run("british english uses its own slot", func(t *testing.T) {
		gb := loadertest.BuildNRO(loadertest.NRO{Titles: map[int][2]string{
			0: {"Color", "Dev"},
			1: {"Colour", "Dev"},
		}})
		entry, err := load(t, gb, "x.nro", Options{Language: BritishEnglish})
		require.NoError(t, err)
		assert.Equal(t, "Colour", entry.Title)
	})
}

func TestLoadNROWithoutAssets(t *testing.T) {
	data := loadertest.BuildNRO(loadertest.NRO{NoAssets: true})

	entry, err := load(t, data, "/sd/switch/tool.nro", Options{Language: DefaultLanguage})
	require.NoError(t, err)
	assert.Equal(t, "tool", entry.Title)
	assert.Empty(t, entry.Author)
	assert.Empty(t, entry.Icon)
}

func TestLoadNROTruncatedNACP(t *testing.T) {
	data := loadertest.BuildNRO(loadertest.NRO{Titles: map[int][2]string{0: {"Cut", "Off"}}})
	data = data[:len(data)-0x1000]

	entry, err := load(t, data, "cut.nro", Options{})
	require.NoError(t, err)
	assert.Equal(t, "cut", entry.Title)
}

func TestLoadNROAssetOffsetsOutOfRange(t *testing.T) {
	titles := map[int][2]string{0: {"Homebrew", "Someone"}}
	icon := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	tests := []struct {
		name      string
		nro       loadertest.NRO
		wantTitle string
		wantIcon  bool
	}{
		{
			name:      "nacp offset near max uint64",
			nro:       loadertest.NRO{Titles: titles, NACPOffset: 0xFFFFFFFFFFFFFF00},
			wantTitle: "homebrew",
		},
		{
			name:      "nacp offset past end of file",
			nro:       loadertest.NRO{Titles: titles, NACPOffset: 0x10000},
			wantTitle: "homebrew",
		},
		{
			name:      "icon offset near max uint64",
			nro:       loadertest.NRO{Titles: titles, Icon: icon, IconOffset: 0xFFFFFFFFFFFFFFF0},
			wantTitle: "Homebrew",
		},
		{
			name:      "offsets in range",
			nro:       loadertest.NRO{Titles: titles, Icon: icon},
			wantTitle: "Homebrew",
			wantIcon:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := load(t, loadertest.BuildNRO(tt.nro), "switch/homebrew.nro", Options{})
			require.NoError(t, err)
			assert.Equal(t, model.FormatNRO, entry.Format)
			assert.Equal(t, tt.wantTitle, entry.Title)
			if tt.wantIcon {
				assert.Equal(t, icon, entry.Icon)
			} else {
				assert.Empty(t, entry.Icon)
			}
		})
	}
}

func TestLoadContainersUseFileName(t *testing.T) {
	tests := []struct {
		data   []byte
		path   string
		format model.Format
	}{
		{loadertest.BuildNSP(), "games/Super Game [0100000000010000].nsp", model.FormatNSP},
		{loadertest.BuildXCI(), "games/Card.xci", model.FormatXCI},
		{loadertest.BuildNSO(), "exefs/main.nso", model.FormatNSO},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			entry, err := load(t, tt.data, tt.path, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.format, entry.Format)
			assert.Equal(t, model.TitleFromPath(tt.path), entry.Title)
		})
	}
}

func TestLoadNCA(t *testing.T) {
	data := buildNCA(t, "NCA3", 0x0100000000010000)

	t.Run("with header key", func(t *testing.T) {
		entry, err := load(t, data, "c/abcdef.nca", Options{Keys: staticKeys{HeaderKeyName: testHeaderKey}})
		require.NoError(t, err)
		assert.Equal(t, model.FormatNCA, entry.Format)
		assert.Equal(t, "0100000000010000", entry.TitleID)
		assert.Equal(t, "abcdef", entry.Title)
	})

	t.Run("without keys", func(t *testing.T) {
		entry, err := load(t, data, "c/abcdef.nca", Options{})
		require.NoError(t, err)
		assert.Empty(t, entry.TitleID)
	})

	t.Run("short header key", func(t *testing.T) {
		short := testHeaderKey[:16]
		entry, err := load(t, data, "c/abcdef.nca", Options{Keys: staticKeys{HeaderKeyName: short}})
		require.NoError(t, err)
		assert.Equal(t, model.FormatNCA, entry.Format)
		assert.Equal(t, "abcdef", entry.Title)
		assert.Empty(t, entry.TitleID)
	})

	t.Run("wrong key", func(t *testing.T) {
		wrong := bytes.Repeat([]byte{0x01}, headerKeySize)
		entry, err := load(t, data, "c/abcdef.nca", Options{Keys: staticKeys{HeaderKeyName: wrong}})
		require.NoError(t, err)
		assert.Empty(t, entry.TitleID)
	})
}

func TestReadNCAHeader(t *testing.T) {
	keys := staticKeys{HeaderKeyName: testHeaderKey}

	t.Run("nca2 accepted", func(t *testing.T) {
		data := buildNCA(t, "NCA2", 0x01000000000100FF)
		header, err := readNCAHeader(bytes.NewReader(data), int64(len(data)), keys)
		require.NoError(t, err)
		assert.Equal(t, "01000000000100FF", header.titleID())
	})

	t.Run("bad magic", func(t *testing.T) {
		data := buildNCA(t, "NCA9", 1)
		_, err := readNCAHeader(bytes.NewReader(data), int64(len(data)), keys)
		require.ErrorIs(t, err, errutils.ErrInvalidPackage)
	})

	t.Run("missing key", func(t *testing.T) {
		data := buildNCA(t, "NCA3", 1)
		_, err := readNCAHeader(bytes.NewReader(data), int64(len(data)), staticKeys{})
		require.ErrorIs(t, err, errutils.ErrKeyNotFound)
	})

	t.Run("short key", func(t *testing.T) {
		data := buildNCA(t, "NCA3", 1)
		_, err := readNCAHeader(bytes.NewReader(data), int64(len(data)), staticKeys{HeaderKeyName: []byte{1, 2}})
		require.ErrorIs(t, err, errutils.ErrInvalidKeyFile)
	})

	t.Run("truncated", func(t *testing.T) {
		data := make([]byte, ncaSectorSize)
		_, err := readNCAHeader(bytes.NewReader(data), int64(len(data)), keys)
		require.ErrorIs(t, err, errutils.ErrInvalidPackage)
	})
}

func TestXTSRoundTrip(t *testing.T) {
	plain := make([]byte, 4*ncaSectorSize)
	for i := range plain {
		plain[i] = byte(i * 7)
	}

	encrypted, err := xtsSectors(testHeaderKey, plain, ncaSectorSize, true)
	require.NoError(t, err)
	assert.NotEqual(t, plain, encrypted)
	// identical plaintext in different sectors must not encrypt identically
	assert.NotEqual(t, encrypted[:ncaSectorSize], encrypted[ncaSectorSize:2*ncaSectorSize])

	decrypted, err := decryptSectors(testHeaderKey, encrypted, ncaSectorSize)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)

	_, err = decryptSectors(testHeaderKey, plain[:100], ncaSectorSize)
	require.Error(t, err)
}

func TestParseNACPTooShort(t *testing.T) {
	_, err := ParseNACP(make([]byte, 0x100))
	require.ErrorIs(t, err, errutils.ErrInvalidPackage)
}
