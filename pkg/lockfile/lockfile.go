// Package lockfile reads and writes pez-lock.toml, the record of what is
// actually installed: one entry per plugin with its pinned commit and the
// exact files that were materialized into the fish config directory.
//
// The lockfile is tool-owned. Users edit pez.toml; pez reconciles the
// lockfile against it.
package lockfile

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/types"
)

// Version is the only lockfile schema version this build understands.
const Version = 1

// FileName is the lockfile name inside the pez config directory.
const FileName = "pez-lock.toml"

// FileRecord is one materialized file: the target directory it was copied
// into and its path relative to that directory (nested paths preserved).
type FileRecord struct {
	Dir  types.TargetDir `toml:"dir"`
	Name string          `toml:"name"`
}

// Path returns the absolute destination of the record under the fish
// config directory.
func (f FileRecord) Path(fishConfigDir string) string {
	return filepath.Join(fishConfigDir, string(f.Dir), f.Name)
}

// Entry is one installed plugin.
type Entry struct {
	Name      string       `toml:"name"`
	Repo      string       `toml:"repo"`
	Source    string       `toml:"source"`
	CommitSHA string       `toml:"commit_sha"`
	Files     []FileRecord `toml:"files"`
}

// IsLocal reports whether the entry came from a local path source.
func (e Entry) IsLocal() bool {
	return e.CommitSHA == types.LocalCommitSHA
}

// ShortSHA returns the abbreviated commit for display.
func (e Entry) ShortSHA() string {
	if len(e.CommitSHA) > 7 && !e.IsLocal() {
		return e.CommitSHA[:7]
	}
	return e.CommitSHA
}

// LockFile is the parsed pez-lock.toml document.
type LockFile struct {
	Version int     `toml:"version"`
	Plugins []Entry `toml:"plugins,omitempty"`
}

// Default returns an empty lockfile at the current schema version.
func Default() *LockFile {
	return &LockFile{Version: Version}
}

// Load parses the lockfile at path. A missing file yields an empty
// lockfile; a file written by an unknown schema version is an error so we
// never reconcile against a document we misread.
func Load(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("no lockfile yet, starting empty")
			return Default(), nil
		}
		return nil, pezerrors.Wrapf(err, pezerrors.ErrLockfileLoad,
			"failed to read %s", path).WithDetail("path", path)
	}

	var lf LockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, pezerrors.Wrapf(err, pezerrors.ErrLockfileLoad,
			"failed to parse %s", path).WithDetail("path", path)
	}
	if lf.Version != Version {
		return nil, pezerrors.Newf(pezerrors.ErrLockfileInconsistency,
			"unsupported lockfile version %d (expected %d)", lf.Version, Version).
			WithDetail("path", path)
	}
	for _, p := range lf.Plugins {
		for _, f := range p.Files {
			if _, err := types.ParseTargetDir(string(f.Dir)); err != nil {
				return nil, pezerrors.Wrapf(err, pezerrors.ErrLockfileLoad,
					"lockfile entry %q records an unknown target dir", p.Name)
			}
		}
	}
	return &lf, nil
}

// Save writes the lockfile to path, creating parent directories as needed.
func Save(path string, lf *LockFile) error {
	data, err := toml.Marshal(lf)
	if err != nil {
		return pezerrors.Wrap(err, pezerrors.ErrLockfileWrite, "failed to encode lockfile")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrLockfileWrite,
			"failed to create config directory %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrLockfileWrite, "failed to write %s", path).
			WithDetail("path", path)
	}
	log.Debug().Str("path", path).Int("plugins", len(lf.Plugins)).Msg("lockfile saved")
	return nil
}

// Get returns the entry whose source matches, or nil.
func (l *LockFile) Get(source string) *Entry {
	for i := range l.Plugins {
		if l.Plugins[i].Source == source {
			return &l.Plugins[i]
		}
	}
	return nil
}

// GetByName returns the entry matching a user-supplied name: the display
// name first, then the repo shorthand, then the raw source.
func (l *LockFile) GetByName(name string) *Entry {
	for i := range l.Plugins {
		if l.Plugins[i].Name == name {
			return &l.Plugins[i]
		}
	}
	for i := range l.Plugins {
		if l.Plugins[i].Repo == name || l.Plugins[i].Source == name {
			return &l.Plugins[i]
		}
	}
	return nil
}

// Upsert replaces the entry with the same source, or appends.
func (l *LockFile) Upsert(entry Entry) {
	for i := range l.Plugins {
		if l.Plugins[i].Source == entry.Source {
			l.Plugins[i] = entry
			return
		}
	}
	l.Plugins = append(l.Plugins, entry)
}

// Remove deletes the entry with the given source and reports whether an
// entry was removed.
func (l *LockFile) Remove(source string) bool {
	for i := range l.Plugins {
		if l.Plugins[i].Source == source {
			l.Plugins = append(l.Plugins[:i], l.Plugins[i+1:]...)
			return true
		}
	}
	return false
}

// Sources returns every recorded source in entry order.
func (l *LockFile) Sources() []string {
	out := make([]string, len(l.Plugins))
	for i, p := range l.Plugins {
		out[i] = p.Source
	}
	return out
}

// DestPaths maps every recorded destination path under fishConfigDir to
// the name of the plugin that owns it. Duplicate owners are reported via
// the second return value, sorted for stable output.
func (l *LockFile) DestPaths(fishConfigDir string) (map[string]string, []string) {
	owners := make(map[string]string)
	var dupes []string
	for _, p := range l.Plugins {
		for _, f := range p.Files {
			dest := f.Path(fishConfigDir)
			if _, ok := owners[dest]; ok {
				dupes = append(dupes, dest)
				continue
			}
			owners[dest] = p.Name
		}
	}
	sort.Strings(dupes)
	return owners, dupes
}
