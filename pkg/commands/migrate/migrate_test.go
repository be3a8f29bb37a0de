package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/testutil"
	"github.com/arthur-debert/pez/pkg/types"
)

const fisherFile = `# fisher plugin list
jorgebucaran/fisher
owner/alpha
owner/tide@v6

owner/alpha
owner/beta
not a target
`

func writeFisherFile(t *testing.T, env *testutil.TestEnvironment, content string) string {
	t.Helper()
	path := filepath.Join(env.FishConfigDir, FisherFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMigratePluginsPlansMissingEntries(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeFisherFile(t, env, fisherFile)
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/beta"}}})

	result, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths})
	require.NoError(t, err)

	// fisher itself, the comment, the blank line, the repeated alpha and
	// the declared beta all drop out of the plan.
	require.Len(t, result.Planned, 2)
	assert.Equal(t, "owner/alpha", result.Planned[0].Repo)
	assert.Equal(t, "owner/tide", result.Planned[1].Repo)
	require.NotNil(t, result.Planned[1].Selector)
	assert.Equal(t, types.SelectorVersion, result.Planned[1].Selector.Kind)
	assert.Equal(t, "v6", result.Planned[1].Selector.Value)

	assert.Equal(t, []string{"not a target"}, result.Skipped)
	assert.False(t, result.Applied)

	// Plan only: the manifest still holds just beta.
	cfg := env.ReadConfig(t)
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, "owner/beta", cfg.Plugins[0].Repo)
}

func TestMigratePluginsApplyWritesManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeFisherFile(t, env, fisherFile)
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/beta"}}})

	result, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths, Apply: true})
	require.NoError(t, err)
	assert.True(t, result.Applied)

	cfg := env.ReadConfig(t)
	require.Len(t, cfg.Plugins, 3)
	assert.Equal(t, "owner/beta", cfg.Plugins[0].Repo)
	assert.Equal(t, "owner/alpha", cfg.Plugins[1].Repo)
	assert.Equal(t, "owner/tide", cfg.Plugins[2].Repo)
	assert.Equal(t, "v6", cfg.Plugins[2].Version)
}

func TestMigratePluginsCreatesManifestOnApply(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeFisherFile(t, env, "owner/alpha\n")

	result, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths, Apply: true})
	require.NoError(t, err)
	assert.True(t, result.Applied)

	cfg := env.ReadConfig(t)
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, "owner/alpha", cfg.Plugins[0].Repo)
}

func TestMigratePluginsNothingToPlan(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeFisherFile(t, env, "# only fisher here\njorgebucaran/fisher\n")

	result, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths, Apply: true})
	require.NoError(t, err)
	assert.Empty(t, result.Planned)
	assert.False(t, result.Applied)
	assert.NoFileExists(t, env.Paths.ConfigFilePath())
}

func TestMigratePluginsMissingFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths})
	require.Error(t, err)
	assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrFilesystem))
}

func TestMigratePluginsFileOverride(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	other := filepath.Join(env.DataDir, "exported_plugins")
	require.NoError(t, os.WriteFile(other, []byte("owner/gamma\n"), 0644))

	result, err := MigratePlugins(MigratePluginsOptions{Paths: env.Paths, File: other})
	require.NoError(t, err)
	require.Len(t, result.Planned, 1)
	assert.Equal(t, "owner/gamma", result.Planned[0].Repo)
}
