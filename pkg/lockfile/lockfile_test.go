package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/types"
)

func TestLoadMissingFile(t *testing.T) {
	lf, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Version, lf.Version)
	assert.Empty(t, lf.Plugins)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("version = 2\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrLockfileInconsistency))
}

func TestLoadRejectsUnknownTargetDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `version = 1

[[plugins]]
name = "tide"
repo = "ilancosman/tide"
source = "https://github.com/ilancosman/tide"
commit_sha = "abc"

[[plugins.files]]
dir = "bin"
name = "tide.fish"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, pezerrors.IsErrorCode(err, pezerrors.ErrLockfileLoad))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	lf := Default()
	lf.Upsert(Entry{
		Name:      "tide",
		Repo:      "ilancosman/tide",
		Source:    "https://github.com/ilancosman/tide",
		CommitSHA: "0123456789abcdef",
		Files: []FileRecord{
			{Dir: types.TargetFunctions, Name: "tide.fish"},
			{Dir: types.TargetConfD, Name: "_tide_init.fish"},
		},
	})

	require.NoError(t, Save(path, lf))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Plugins, 1)
	entry := loaded.Plugins[0]
	assert.Equal(t, "tide", entry.Name)
	assert.Equal(t, "0123456", entry.ShortSHA())
	require.Len(t, entry.Files, 2)
	assert.Equal(t, types.TargetFunctions, entry.Files[0].Dir)
}

func TestUpsertReplacesBySource(t *testing.T) {
	lf := Default()
	lf.Upsert(Entry{Name: "a", Source: "https://github.com/o/a", CommitSHA: "111"})
	lf.Upsert(Entry{Name: "b", Source: "https://github.com/o/b", CommitSHA: "222"})
	lf.Upsert(Entry{Name: "a", Source: "https://github.com/o/a", CommitSHA: "333"})

	require.Len(t, lf.Plugins, 2)
	assert.Equal(t, "333", lf.Get("https://github.com/o/a").CommitSHA)
	assert.Equal(t, []string{"https://github.com/o/a", "https://github.com/o/b"}, lf.Sources())
}

func TestGetByName(t *testing.T) {
	lf := Default()
	lf.Upsert(Entry{Name: "tide", Repo: "ilancosman/tide", Source: "https://github.com/ilancosman/tide"})

	assert.NotNil(t, lf.GetByName("tide"))
	assert.NotNil(t, lf.GetByName("ilancosman/tide"))
	assert.NotNil(t, lf.GetByName("https://github.com/ilancosman/tide"))
	assert.Nil(t, lf.GetByName("hydro"))
}

func TestRemove(t *testing.T) {
	lf := Default()
	lf.Upsert(Entry{Name: "a", Source: "s1"})
	lf.Upsert(Entry{Name: "b", Source: "s2"})

	assert.True(t, lf.Remove("s1"))
	assert.False(t, lf.Remove("s1"))
	require.Len(t, lf.Plugins, 1)
	assert.Equal(t, "b", lf.Plugins[0].Name)
}

func TestDestPaths(t *testing.T) {
	lf := Default()
	lf.Upsert(Entry{Name: "a", Source: "s1", Files: []FileRecord{
		{Dir: types.TargetFunctions, Name: "shared.fish"},
		{Dir: types.TargetThemes, Name: "dracula.theme"},
	}})
	lf.Upsert(Entry{Name: "b", Source: "s2", Files: []FileRecord{
		{Dir: types.TargetFunctions, Name: "shared.fish"},
	}})

	owners, dupes := lf.DestPaths("/home/u/.config/fish")
	assert.Equal(t, "a", owners["/home/u/.config/fish/functions/shared.fish"])
	assert.Equal(t, "a", owners["/home/u/.config/fish/themes/dracula.theme"])
	require.Len(t, dupes, 1)
	assert.Equal(t, "/home/u/.config/fish/functions/shared.fish", dupes[0])
}

func TestIsLocal(t *testing.T) {
	assert.True(t, Entry{CommitSHA: types.LocalCommitSHA}.IsLocal())
	assert.False(t, Entry{CommitSHA: "abc1234"}.IsLocal())
	assert.Equal(t, "local", Entry{CommitSHA: types.LocalCommitSHA}.ShortSHA())
}
