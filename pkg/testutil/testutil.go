// Package testutil wires isolated pez environments for engine tests: every
// directory pez touches is redirected into the test's temp dir, and event
// emission is suppressed so no test ever spawns fish.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/paths"
)

// TestEnvironment holds the isolated directories for one test.
type TestEnvironment struct {
	FishConfigDir string
	RuntimeDir    string
	ConfigDir     string
	DataDir       string
	Paths         paths.Paths
}

// NewTestEnvironment points every pez directory at subdirectories of the
// test's temp dir and resolves a Paths against them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		FishConfigDir: filepath.Join(root, "fish"),
		RuntimeDir:    filepath.Join(root, "fish-runtime"),
		ConfigDir:     filepath.Join(root, "pez"),
		DataDir:       filepath.Join(root, "data"),
	}

	t.Setenv(paths.EnvTargetDir, env.FishConfigDir)
	t.Setenv(paths.EnvFishConfigDir, env.RuntimeDir)
	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvDataDir, env.DataDir)
	t.Setenv("PEZ_SUPPRESS_EMIT", "1")

	for _, dir := range []string{env.FishConfigDir, env.RuntimeDir, env.ConfigDir, env.DataDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	p, err := paths.New()
	require.NoError(t, err)
	env.Paths = p
	return env
}

// WriteConfig saves a manifest into the environment's config dir.
func (e *TestEnvironment) WriteConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, config.Save(e.Paths.ConfigFilePath(), cfg))
}

// ReadConfig loads the manifest back.
func (e *TestEnvironment) ReadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(e.Paths.ConfigFilePath())
	require.NoError(t, err)
	return cfg
}

// WriteLockFile saves a lockfile into the environment's config dir.
func (e *TestEnvironment) WriteLockFile(t *testing.T, lf *lockfile.LockFile) {
	t.Helper()
	require.NoError(t, lockfile.Save(e.Paths.LockFilePath(), lf))
}

// ReadLockFile loads the lockfile back; missing files yield an empty one.
func (e *TestEnvironment) ReadLockFile(t *testing.T) *lockfile.LockFile {
	t.Helper()
	lf, err := lockfile.Load(e.Paths.LockFilePath())
	require.NoError(t, err)
	return lf
}

// FishFile returns the path of a file under the fish config dir.
func (e *TestEnvironment) FishFile(parts ...string) string {
	return filepath.Join(append([]string{e.FishConfigDir}, parts...)...)
}

// WriteTree writes files (path relative to root, slash-separated) with the
// given contents, creating directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}
