package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/testutil"
	"github.com/arthur-debert/pez/pkg/types"
)

const alphaSource = "https://github.com/owner/alpha"

func findCheck(t *testing.T, result *DoctorResult, name string) Check {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not in report", name)
	return Check{}
}

func TestRunChecksFreshEnvironment(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)

	// Without a lockfile the lock-dependent checks are skipped.
	names := make([]string, 0, len(result.Checks))
	for _, c := range result.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"config", "lock_file", "fish_config_dir", "pez_data_dir",
		"activate_configured", "event_hook_readiness", "install_layout",
	}, names)

	assert.Equal(t, StatusWarn, findCheck(t, result, "config").Status)
	assert.Equal(t, "pez.toml not found", findCheck(t, result, "config").Details)
	assert.Equal(t, StatusWarn, findCheck(t, result, "lock_file").Status)
	assert.Equal(t, StatusOK, findCheck(t, result, "fish_config_dir").Status)
	assert.Equal(t, StatusOK, findCheck(t, result, "pez_data_dir").Status)
	assert.Equal(t, StatusWarn, findCheck(t, result, "activate_configured").Status)
	assert.Equal(t, StatusWarn, findCheck(t, result, "event_hook_readiness").Status)

	layout := findCheck(t, result, "install_layout")
	assert.Equal(t, StatusOK, layout.Status)
	assert.Contains(t, layout.Details, "created on install")

	assert.False(t, result.HasError())
}

func TestRunChecksHealthyInstall(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(t, &config.Config{Plugins: []config.PluginEntry{{Repo: "owner/alpha"}}})
	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{
			Name: "alpha", Repo: "owner/alpha", Source: alphaSource, CommitSHA: "sha-alpha",
			Files: []lockfile.FileRecord{{Dir: types.TargetFunctions, Name: "alpha.fish"}},
		},
	}})
	testutil.WriteTree(t, env.FishConfigDir, map[string]string{
		"functions/alpha.fish": "function alpha; end",
		"completions/.keep":    "",
		"conf.d/.keep":         "",
		"themes/.keep":         "",
	})
	testutil.WriteTree(t, env.Paths.RepoDir("github.com", "owner", "alpha"), map[string]string{
		"functions/alpha.fish": "function alpha; end",
	})
	testutil.WriteTree(t, env.RuntimeDir, map[string]string{
		"config.fish": "pez activate fish | source\n",
	})

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)
	require.Len(t, result.Checks, 11)
	for _, c := range result.Checks {
		assert.Equal(t, StatusOK, c.Status, "check %s: %s", c.Name, c.Details)
	}
	assert.False(t, result.HasError())

	assert.Equal(t, "all cloned", findCheck(t, result, "repos").Details)
	assert.Equal(t, "all present", findCheck(t, result, "target_files").Details)
	assert.Equal(t, "no conflicts", findCheck(t, result, "duplicates").Details)
	assert.Equal(t, "no theme assets recorded in lock file", findCheck(t, result, "theme_assets").Details)
	assert.Equal(t, "target directories are present", findCheck(t, result, "install_layout").Details)
}

func TestRunChecksBrokenState(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, os.WriteFile(env.Paths.ConfigFilePath(), []byte("this is not toml ]["), 0644))
	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{
			Name: "alpha", Repo: "owner/alpha", Source: alphaSource, CommitSHA: "sha-alpha",
			Files: []lockfile.FileRecord{
				{Dir: types.TargetFunctions, Name: "alpha.fish"},
				{Dir: types.TargetConfD, Name: "shared.fish"},
			},
		},
		{
			Name: "beta", Repo: "owner/beta", Source: "https://github.com/owner/beta", CommitSHA: "sha-beta",
			Files: []lockfile.FileRecord{{Dir: types.TargetConfD, Name: "shared.fish"}},
		},
	}})

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)

	cfg := findCheck(t, result, "config")
	assert.Equal(t, StatusError, cfg.Status)
	assert.Contains(t, cfg.Details, "failed to load")

	repos := findCheck(t, result, "repos")
	assert.Equal(t, StatusWarn, repos.Status)
	assert.Contains(t, repos.Details, "owner/alpha")
	assert.Contains(t, repos.Details, "owner/beta")

	files := findCheck(t, result, "target_files")
	assert.Equal(t, StatusWarn, files.Status)
	assert.Contains(t, files.Details, "alpha.fish")

	dupes := findCheck(t, result, "duplicates")
	assert.Equal(t, StatusError, dupes.Status)
	assert.Contains(t, dupes.Details, "shared.fish")

	assert.True(t, result.HasError())
}

func TestRunChecksMissingThemeAssets(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteLockFile(t, &lockfile.LockFile{Version: lockfile.Version, Plugins: []lockfile.Entry{
		{
			Name: "dracula", Repo: "owner/dracula", Source: "https://github.com/owner/dracula",
			CommitSHA: "sha-d",
			Files:     []lockfile.FileRecord{{Dir: types.TargetThemes, Name: "dracula.theme"}},
		},
	}})

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)

	themes := findCheck(t, result, "theme_assets")
	assert.Equal(t, StatusWarn, themes.Status)
	assert.Contains(t, themes.Details, "dracula.theme")
}

func TestActivateCheckIgnoresComments(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	configFish := filepath.Join(env.RuntimeDir, "config.fish")
	require.NoError(t, os.WriteFile(configFish, []byte("# pez activate fish | source\n"), 0644))

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)
	activate := findCheck(t, result, "activate_configured")
	assert.Equal(t, StatusWarn, activate.Status)
	assert.Contains(t, activate.Details, "not found in")

	require.NoError(t, os.WriteFile(configFish, []byte("set -x EDITOR vim\npez activate fish | source\n"), 0644))
	result, err = RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)
	activate = findCheck(t, result, "activate_configured")
	assert.Equal(t, StatusOK, activate.Status)
	assert.Equal(t, StatusOK, findCheck(t, result, "event_hook_readiness").Status)
}

func TestRunChecksNonDirectoryLayout(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, os.WriteFile(env.FishFile("functions"), []byte("not a dir"), 0644))

	result, err := RunChecks(DoctorOptions{Paths: env.Paths})
	require.NoError(t, err)
	layout := findCheck(t, result, "install_layout")
	assert.Equal(t, StatusWarn, layout.Status)
	assert.Contains(t, layout.Details, "non-directories")
}

func TestHasError(t *testing.T) {
	clean := &DoctorResult{Checks: []Check{
		{Name: "config", Status: StatusOK},
		{Name: "repos", Status: StatusWarn},
	}}
	assert.False(t, clean.HasError())

	broken := &DoctorResult{Checks: []Check{
		{Name: "duplicates", Status: StatusError},
	}}
	assert.True(t, broken.HasError())
}
