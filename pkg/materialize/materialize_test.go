package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/types"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	repo := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(repo, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return repo
}

func TestPlan(t *testing.T) {
	repo := writeRepo(t, map[string]string{
		"functions/greet.fish":       "function greet; end",
		"functions/nested/deep.fish": "function deep; end",
		"functions/readme.md":        "ignored",
		"completions/greet.fish":     "complete -c greet",
		"conf.d/greet_init.fish":     "emit greet",
		"themes/dracula.theme":       "theme",
		"themes/notes.fish":          "wrong extension for themes",
		"docs/guide.fish":            "unrecognized dir",
		"functions.fish":             "not inside a dir",
	})

	assets, err := Plan(repo)
	require.NoError(t, err)

	got := map[string]bool{}
	for _, a := range assets {
		got[string(a.Dir)+"/"+filepath.ToSlash(a.Rel)] = true
	}
	assert.True(t, got["functions/greet.fish"])
	assert.True(t, got["functions/nested/deep.fish"])
	assert.True(t, got["completions/greet.fish"])
	assert.True(t, got["conf.d/greet_init.fish"])
	assert.True(t, got["themes/dracula.theme"])
	assert.Len(t, assets, 5)
}

func TestPlanEmptyRepo(t *testing.T) {
	assets, err := Plan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestCopy(t *testing.T) {
	repo := writeRepo(t, map[string]string{
		"functions/greet.fish":       "function greet; end",
		"functions/nested/deep.fish": "function deep; end",
		"themes/dracula.theme":       "theme",
	})
	fishDir := t.TempDir()

	assets, err := Plan(repo)
	require.NoError(t, err)

	set := NewDestinationSet()
	records, err := Copy(fishDir, CopyRequest{
		PluginName: "greeter",
		RepoPath:   repo,
		Assets:     assets,
	}, set)
	require.NoError(t, err)
	require.Len(t, records, 3)

	content, err := os.ReadFile(filepath.Join(fishDir, "functions", "greet.fish"))
	require.NoError(t, err)
	assert.Equal(t, "function greet; end", string(content))

	assert.FileExists(t, filepath.Join(fishDir, "functions", "nested", "deep.fish"))
	assert.FileExists(t, filepath.Join(fishDir, "themes", "dracula.theme"))

	owner, ok := set.Owner(filepath.Join(fishDir, "themes", "dracula.theme"))
	assert.True(t, ok)
	assert.Equal(t, "greeter", owner)

	// Recognized dirs exist even when nothing was copied into them.
	assert.DirExists(t, filepath.Join(fishDir, "completions"))
	assert.DirExists(t, filepath.Join(fishDir, "conf.d"))
}

func TestCopyDuplicateDestinationAbortsWholePlugin(t *testing.T) {
	repoA := writeRepo(t, map[string]string{"functions/shared.fish": "a"})
	repoB := writeRepo(t, map[string]string{
		"functions/shared.fish": "b",
		"functions/only-b.fish": "b",
	})
	fishDir := t.TempDir()
	set := NewDestinationSet()

	assetsA, err := Plan(repoA)
	require.NoError(t, err)
	_, err = Copy(fishDir, CopyRequest{PluginName: "a", RepoPath: repoA, Assets: assetsA}, set)
	require.NoError(t, err)

	assetsB, err := Plan(repoB)
	require.NoError(t, err)
	_, err = Copy(fishDir, CopyRequest{PluginName: "b", RepoPath: repoB, Assets: assetsB}, set)
	require.Error(t, err)
	assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrDuplicateDestination))

	// Winner's file intact, loser contributed nothing at all.
	content, err := os.ReadFile(filepath.Join(fishDir, "functions", "shared.fish"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(content))
	assert.NoFileExists(t, filepath.Join(fishDir, "functions", "only-b.fish"))
}

func TestCopyFailOnExisting(t *testing.T) {
	repo := writeRepo(t, map[string]string{"functions/greet.fish": "new"})
	fishDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(fishDir, "functions"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fishDir, "functions", "greet.fish"), []byte("old"), 0644))

	assets, err := Plan(repo)
	require.NoError(t, err)

	t.Run("skip mode refuses to overwrite", func(t *testing.T) {
		_, err := Copy(fishDir, CopyRequest{
			PluginName:     "greeter",
			RepoPath:       repo,
			Assets:         assets,
			FailOnExisting: true,
		}, NewDestinationSet())
		require.Error(t, err)
		assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrDuplicateDestination))

		content, _ := os.ReadFile(filepath.Join(fishDir, "functions", "greet.fish"))
		assert.Equal(t, "old", string(content))
	})

	t.Run("force mode overwrites", func(t *testing.T) {
		records, err := Copy(fishDir, CopyRequest{
			PluginName: "greeter",
			RepoPath:   repo,
			Assets:     assets,
		}, NewDestinationSet())
		require.NoError(t, err)
		require.Len(t, records, 1)

		content, _ := os.ReadFile(filepath.Join(fishDir, "functions", "greet.fish"))
		assert.Equal(t, "new", string(content))
	})
}

func TestCopySeededSetBlocksCrossRunConflicts(t *testing.T) {
	repo := writeRepo(t, map[string]string{"functions/shared.fish": "new plugin"})
	fishDir := t.TempDir()

	set := NewDestinationSet()
	set.Seed("installed-plugin", []string{filepath.Join(fishDir, "functions", "shared.fish")})

	assets, err := Plan(repo)
	require.NoError(t, err)

	_, err = Copy(fishDir, CopyRequest{PluginName: "newcomer", RepoPath: repo, Assets: assets}, set)
	require.Error(t, err)
	assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrDuplicateDestination))
	assert.Contains(t, err.Error(), "installed-plugin")
}

func TestRemove(t *testing.T) {
	fishDir := t.TempDir()
	path := filepath.Join(fishDir, "functions", "greet.fish")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	records := []lockfile.FileRecord{
		{Dir: types.TargetFunctions, Name: "greet.fish"},
		{Dir: types.TargetConfD, Name: "never_existed.fish"},
	}

	require.NoError(t, Remove(fishDir, records))
	assert.NoFileExists(t, path)
}

func TestDestinationSetRelease(t *testing.T) {
	set := NewDestinationSet()
	set.Add("a", "/p/one")
	set.Add("a", "/p/two")
	set.Add("b", "/p/three")

	set.Release("a")

	_, ok := set.Owner("/p/one")
	assert.False(t, ok)
	owner, ok := set.Owner("/p/three")
	assert.True(t, ok)
	assert.Equal(t, "b", owner)
}
