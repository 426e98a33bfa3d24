package keys_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/keys"
	"github.com/glorpus-work/romcat/pkg/location/locationtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"; comment",
		"# another",
		"",
		"header_key = " + strings.Repeat("0011", 16),
		"KEY_AREA_KEY_APPLICATION_00=aabb",
		"no separator here",
		"bad name! = 00",
		"odd_hex = abc",
		"empty_value =",
		"header_key = 00112233",
	}, "\n")

	parsed, err := keys.Parse(strings.NewReader(input), "prod.keys")
	require.ErrorIs(t, err, errutils.ErrInvalidKeyFile)
	assert.Contains(t, err.Error(), "prod.keys:6")
	assert.Contains(t, err.Error(), "prod.keys:9")
	assert.Contains(t, err.Error(), "prod.keys:10")
	assert.Contains(t, err.Error(), "header_key must be 32 bytes")

	assert.Equal(t, []string{"header_key", "key_area_key_application_00"}, parsed.Names())
	v, ok := parsed.Key("HEADER_KEY")
	require.True(t, ok)
	assert.Len(t, v, 32)
	v, ok = parsed.Key("key_area_key_application_00")
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB}, v)
}

func TestParseClean(t *testing.T) {
	parsed, err := keys.Parse(strings.NewReader("a = 01\nb = 02\n"), "x")
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func TestFormatRoundTrip(t *testing.T) {
	original := keys.Keyset{"b": {0x02}, "a": {0xAB, 0xCD}}

	var buf bytes.Buffer
	require.NoError(t, keys.Format(&buf, original))
	assert.Equal(t, "a = abcd\nb = 02\n", buf.String())

	parsed, err := keys.Parse(&buf, "x")
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestKeysetMerge(t *testing.T) {
	base := keys.Keyset{"a": {1}, "b": {2}}
	changed := base.Merge(keys.Keyset{"a": {1}, "b": {3}, "c": {4}})
	assert.Equal(t, 2, changed)
	assert.Equal(t, keys.Keyset{"a": {1}, "b": {3}, "c": {4}}, base)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStoreImport(t *testing.T) {
	loc := t.TempDir()
	writeFile(t, filepath.Join(loc, keys.ProdKeysFile), "master_key_00 = 0011\nheader_key = 0011\nbroken line\n")
	writeFile(t, filepath.Join(loc, keys.TitleKeysFile), "01000000000100000000000000000000 = ffee\n")

	store := keys.NewStore(filepath.Join(t.TempDir(), "keys"))
	require.NoError(t, store.Import(context.Background(), loc))

	v, ok := store.Key("master_key_00")
	require.True(t, ok)
	assert.Equal(t, []byte{0x00, 0x11}, v)
	_, ok = store.Key("header_key")
	assert.False(t, ok, "a short header key is dropped with a warning")
	_, ok = store.Key("01000000000100000000000000000000")
	assert.True(t, ok)

	info, err := os.Stat(filepath.Join(store.Dir(), keys.ProdKeysFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreImportMergesAcrossLocations(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, keys.ProdKeysFile), "a = 01\nb = 02\n")
	writeFile(t, filepath.Join(second, keys.ProdKeysFile), "b = 03\nc = 04\n")

	store := keys.NewStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, first))

	// loaded before the second import; the cache must be invalidated
	_, ok := store.Key("c")
	assert.False(t, ok)

	require.NoError(t, store.Import(ctx, second))

	all, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, keys.Keyset{"a": {0x01}, "b": {0x03}, "c": {0x04}}, all)
}

func TestStoreImportFromArchive(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, keys.ProdKeysFile), "master_key_00 = aa\n")
	archivePath := filepath.Join(tmp, "bundle.zip")
	require.NoError(t, locationtest.Archive(context.Background(), src, archivePath))

	store := keys.NewStore(filepath.Join(tmp, "keys"))
	require.NoError(t, store.Import(context.Background(), archivePath))

	v, ok := store.Key("master_key_00")
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA}, v)
}

func TestStoreImportNoKeyFiles(t *testing.T) {
	storeDir := filepath.Join(t.TempDir(), "keys")
	store := keys.NewStore(storeDir)
	require.NoError(t, store.Import(context.Background(), t.TempDir()))

	_, err := os.Stat(storeDir)
	assert.True(t, os.IsNotExist(err), "store directory must not be created without keys")

	all, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreImportUnreadableLocation(t *testing.T) {
	store := keys.NewStore(t.TempDir())
	err := store.Import(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, errutils.ErrKeyImport)
	require.ErrorIs(t, err, errutils.ErrLocationUnresolvable)
}
