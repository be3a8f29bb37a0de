package prune

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/testutil"
	"github.com/arthur-debert/pez/pkg/types"
	"github.com/arthur-debert/pez/pkg/ui/confirmations"
)

const (
	alphaSource = "https://github.com/owner/alpha"
	staleSource = "https://github.com/owner/stale"
)

// seedState declares alpha, installs alpha and stale on disk, and records
// both in the lockfile, leaving stale as the one prune candidate.
func seedState(t *testing.T, env *testutil.TestEnvironment) {
	t.Helper()
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/alpha"}}})

	testutil.WriteTree(t, env.FishConfigDir, map[string]string{
		"functions/alpha.fish": "function alpha; end",
		"functions/stale.fish": "function stale; end",
	})
	testutil.WriteTree(t, env.Paths.RepoDir("github.com", "owner", "alpha"), map[string]string{
		"functions/alpha.fish": "function alpha; end",
	})
	testutil.WriteTree(t, env.Paths.RepoDir("github.com", "owner", "stale"), map[string]string{
		"functions/stale.fish": "function stale; end",
	})

	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{
			Name: "alpha", Repo: "owner/alpha", Source: alphaSource, CommitSHA: "sha-alpha",
			Files: []lockfile.FileRecord{{Dir: types.TargetFunctions, Name: "alpha.fish"}},
		},
		{
			Name: "stale", Repo: "owner/stale", Source: staleSource, CommitSHA: "sha-stale",
			Files: []lockfile.FileRecord{{Dir: types.TargetFunctions, Name: "stale.fish"}},
		},
	}})
}

func pruneOpts(env *testutil.TestEnvironment) PrunePluginsOptions {
	return PrunePluginsOptions{
		Paths:   env.Paths,
		Emitter: shell.NewEmitter(false),
	}
}

func TestPrunePluginsRemovesUndeclared(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	seedState(t, env)

	result, err := PrunePlugins(context.Background(), pruneOpts(env))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "stale", result.Candidates[0].Name)
	require.Len(t, result.Report.Results, 1)
	assert.Equal(t, types.StateRecorded, result.Report.Results[0].State)

	assert.NoFileExists(t, env.FishFile("functions", "stale.fish"))
	assert.NoDirExists(t, env.Paths.RepoDir("github.com", "owner", "stale"))
	assert.FileExists(t, env.FishFile("functions", "alpha.fish"))

	lock := env.ReadLockFile(t)
	assert.Nil(t, lock.Get(staleSource))
	assert.NotNil(t, lock.Get(alphaSource))
}

func TestPrunePluginsNothingToDo(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/alpha"}}})
	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{Name: "alpha", Repo: "owner/alpha", Source: alphaSource, CommitSHA: "sha-alpha"},
	}})

	result, err := PrunePlugins(context.Background(), pruneOpts(env))
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.Report.Results)
}

func TestPrunePluginsDryRunTouchesNothing(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	seedState(t, env)

	opts := pruneOpts(env)
	opts.DryRun = true
	result, err := PrunePlugins(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Empty(t, result.Report.Results)

	assert.FileExists(t, env.FishFile("functions", "stale.fish"))
	assert.NotNil(t, env.ReadLockFile(t).Get(staleSource))
}

func TestPrunePluginsEmptyConfigNeedsConfirmation(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	seedState(t, env)
	env.WriteConfig(t, &config.Config{})

	// Declined: both plugins stay.
	opts := pruneOpts(env)
	opts.Prompter = confirmations.Auto(false)
	result, err := PrunePlugins(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.EmptyConfig)
	assert.True(t, result.Aborted)
	require.Len(t, result.Candidates, 2)
	assert.NotNil(t, env.ReadLockFile(t).Get(alphaSource))

	// Approved: everything goes.
	opts.Prompter = confirmations.Auto(true)
	result, err = PrunePlugins(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	require.Len(t, result.Report.Results, 2)
	assert.Empty(t, env.ReadLockFile(t).Plugins)
}

func TestPrunePluginsNilPrompterDeclines(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	seedState(t, env)
	env.WriteConfig(t, &config.Config{})

	result, err := PrunePlugins(context.Background(), pruneOpts(env))
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Len(t, env.ReadLockFile(t).Plugins, 2)
}

func TestPrunePluginsMissingCloneNeedsForce(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/alpha"}}})
	testutil.WriteTree(t, env.FishConfigDir, map[string]string{
		"functions/stale.fish": "function stale; end",
	})
	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{
			Name: "stale", Repo: "owner/stale", Source: staleSource, CommitSHA: "sha-stale",
			Files: []lockfile.FileRecord{{Dir: types.TargetFunctions, Name: "stale.fish"}},
		},
	}})

	result, err := PrunePlugins(context.Background(), pruneOpts(env))
	require.NoError(t, err)
	res := result.Report.Results[0]
	assert.Equal(t, types.StateSkipped, res.State)
	assert.Contains(t, res.Reason, "--force")
	assert.FileExists(t, env.FishFile("functions", "stale.fish"))

	opts := pruneOpts(env)
	opts.Force = true
	result, err = PrunePlugins(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, types.StateRecorded, result.Report.Results[0].State)
	assert.NoFileExists(t, env.FishFile("functions", "stale.fish"))
	assert.Empty(t, env.ReadLockFile(t).Plugins)
}
