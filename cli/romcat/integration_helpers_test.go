//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/romcat/pkg/loader/loadertest"
	"github.com/stretchr/testify/require"
)

// testEnv is an isolated romcat installation: a config file, a data
// directory and a hooks directory under one temp root.
type testEnv struct {
	root    string
	cfgPath string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		root:    root,
		cfgPath: filepath.Join(root, "config", "config.yaml"),
		dataDir: filepath.Join(root, "data"),
	}
	writeTempConfig(t, env.cfgPath, env.dataDir, filepath.Join(root, "hooks"))
	return env
}

// writeTempConfig writes a minimal config with no locations.
func writeTempConfig(t *testing.T, path, dataDir, hooksDir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	yamlContent := "locations: []\n" +
		"settings:\n" +
		"  data_dir: " + strings.ReplaceAll(dataDir, "\\", "\\\\") + "\n" +
		"  hooks_dir: " + strings.ReplaceAll(hooksDir, "\\", "\\\\") + "\n" +
		"  system_language: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
}

// run executes romcat with the env's config and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "romcat %v", args)
	return out
}

// createRomDir writes a location holding one NRO with metadata, one NSP and
// one XCI.
func createRomDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "switch"), 0o755))

	files := map[string][]byte{
		filepath.Join("switch", "checkpoint.nro"): loadertest.BuildNRO(loadertest.NRO{
			Titles:  map[int][2]string{0: {"Checkpoint", "Bernardo"}, 2: {"チェックポイント", "Bernardo"}},
			Version: "3.8.0",
		}),
		name + ".nsp": loadertest.BuildNSP(),
		name + ".xci": loadertest.BuildXCI(),
	}
	for rel, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), data, 0o644))
	}
	return dir
}
