package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/keys"
	"github.com/glorpus-work/romcat/pkg/loader"
	"github.com/glorpus-work/romcat/pkg/loader/loadertest"
	"github.com/glorpus-work/romcat/pkg/location/locationtest"
	"github.com/glorpus-work/romcat/pkg/model"
	"github.com/glorpus-work/romcat/pkg/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, data, 0o644))
	}
}

func sampleFiles() map[string][]byte {
	return map[string][]byte{
		"switch/checkpoint.nro": loadertest.BuildNRO(loadertest.NRO{
			Titles:  map[int][2]string{0: {"Checkpoint", "Bernardo"}},
			Version: "3.8.0",
		}),
		"switch/tool.nro":   loadertest.BuildNRO(loadertest.NRO{NoAssets: true}),
		"games/alpha.nsp":   loadertest.BuildNSP(),
		"games/beta.xci":    loadertest.BuildXCI(),
		"games/broken.nsp":  []byte("not a package"),
		"notes.txt":         []byte("ignored"),
		".hidden/ghost.nsp": loadertest.BuildNSP(),
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, sampleFiles())

	got, err := scanner.New(nil).Scan(context.Background(), root, loader.DefaultLanguage)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, []model.Format{model.FormatNRO, model.FormatXCI, model.FormatNSP}, got.Formats())
	assert.Equal(t, map[model.Format]int{model.FormatNRO: 2, model.FormatXCI: 1, model.FormatNSP: 1}, got.Counts())

	nro := got[model.FormatNRO]
	assert.Equal(t, "Checkpoint", nro[0].Title)
	assert.Equal(t, "Bernardo", nro[0].Author)
	assert.Equal(t, filepath.Join(root, "switch", "checkpoint.nro"), nro[0].Path)
	assert.Equal(t, "tool", nro[1].Title)

	assert.Equal(t, filepath.Join(root, "games", "alpha.nsp"), got[model.FormatNSP][0].Path)
}

func TestScanIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, sampleFiles())
	s := scanner.New(nil)

	first, err := s.Scan(context.Background(), root, loader.DefaultLanguage)
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), root, loader.DefaultLanguage)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestScanArchive(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeFiles(t, src, sampleFiles())
	archivePath := filepath.Join(tmp, "library.zip")
	require.NoError(t, locationtest.Archive(context.Background(), src, archivePath))

	got, err := scanner.New(nil).Scan(context.Background(), archivePath, loader.DefaultLanguage)
	require.NoError(t, err)

	require.Len(t, got[model.FormatNRO], 2)
	assert.Equal(t, "Checkpoint", got[model.FormatNRO][0].Title)
	assert.Equal(t, archivePath+"/switch/checkpoint.nro", got[model.FormatNRO][0].Path)
	assert.Len(t, got[model.FormatNSP], 1)
}

func TestScanSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{"alpha.nsp": loadertest.BuildNSP()})
	file := filepath.Join(root, "alpha.nsp")

	got, err := scanner.New(nil).Scan(context.Background(), file, loader.DefaultLanguage)
	require.NoError(t, err)
	require.Len(t, got[model.FormatNSP], 1)
	assert.Equal(t, file, got[model.FormatNSP][0].Path)
}

func TestScanEmptyDirectory(t *testing.T) {
	got, err := scanner.New(nil).Scan(context.Background(), t.TempDir(), loader.DefaultLanguage)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestScanUnresolvableLocation(t *testing.T) {
	_, err := scanner.New(nil).Scan(context.Background(), filepath.Join(t.TempDir(), "gone"), loader.DefaultLanguage)
	require.ErrorIs(t, err, errutils.ErrScan)
	require.ErrorIs(t, err, errutils.ErrLocationUnresolvable)
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, sampleFiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.New(nil).Scan(ctx, root, loader.DefaultLanguage)
	require.ErrorIs(t, err, errutils.ErrScan)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanDegradesOnBadPackageInput(t *testing.T) {
	root := t.TempDir()
	corruptNRO := loadertest.BuildNRO(loadertest.NRO{
		Titles:     map[int][2]string{0: {"Homebrew", "Someone"}},
		NACPOffset: 0xFFFFFFFFFFFFFF00,
	})
	writeFiles(t, root, map[string][]byte{
		"game.nca":            make([]byte, 0x400),
		"switch/homebrew.nro": corruptNRO,
	})
	shortHeaderKey := keys.Keyset{loader.HeaderKeyName: make([]byte, 16)}

	got, err := scanner.New(shortHeaderKey).Scan(context.Background(), root, loader.DefaultLanguage)
	require.NoError(t, err)

	require.Len(t, got[model.FormatNCA], 1)
	assert.Equal(t, "game", got[model.FormatNCA][0].Title)
	assert.Empty(t, got[model.FormatNCA][0].TitleID)

	require.Len(t, got[model.FormatNRO], 1)
	assert.Equal(t, "homebrew", got[model.FormatNRO][0].Title)
	assert.Empty(t, got[model.FormatNRO][0].Author)
}
