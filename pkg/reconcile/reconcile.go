// Package reconcile computes the three-way diff between the declared
// configuration, the lockfile, and filesystem reality. Install-from-config,
// upgrade, prune, uninstall, and doctor are all projections of the same
// diff rather than separate ad hoc walks.
package reconcile

import (
	"os"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// Presence records which of the three legs know about a source.
type Presence struct {
	// Declared means the source appears in pez.toml.
	Declared bool

	// Locked means the lockfile has an entry for the source.
	Locked bool

	// CloneOnDisk means the clone directory (or the local plugin path)
	// exists.
	CloneOnDisk bool
}

// Item is one plugin source observed across the three legs.
type Item struct {
	// Key is the lockfile identity: clone URL or absolute local path.
	Key string

	// Target carries the declared spec, resolved; zero unless Declared.
	Target types.ResolvedTarget

	// Entry is the recorded lock entry; nil unless Locked.
	Entry *lockfile.Entry

	// RepoDir is the clone directory for remote sources, the plugin path
	// for local ones, and empty when neither could be derived.
	RepoDir string

	Presence Presence

	// MissingFiles are recorded destinations absent from the fish config
	// dir.
	MissingFiles []lockfile.FileRecord
}

// Local reports whether the item's source is a local path.
func (i Item) Local() bool {
	if i.Presence.Declared {
		return i.Target.IsLocal
	}
	return i.Entry != nil && i.Entry.IsLocal()
}

// Name is the display name, preferring the lock entry's recorded one.
func (i Item) Name() string {
	if i.Entry != nil {
		return i.Entry.Name
	}
	return i.Target.Spec.DisplayName()
}

// Diff is the full three-way observation, declared entries first in
// declaration order, then lockfile-only entries in lock order.
type Diff struct {
	Items []Item

	byKey map[string]int
}

// Compute builds the diff. Declared specs that fail to parse or resolve
// abort the whole computation: a broken configuration is ConfigValidation
// before any work starts.
func Compute(cfg *config.Config, lock *lockfile.LockFile, p paths.Paths) (*Diff, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}

	diff := &Diff{byKey: make(map[string]int)}
	for _, spec := range specs {
		resolved, err := target.Resolve(target.FromSpec(spec))
		if err != nil {
			return nil, pezerrors.Wrapf(err, pezerrors.ErrConfigValidation,
				"invalid plugin source %q", spec.SourceID())
		}
		item := Item{
			Key:    resolved.LockKey(),
			Target: resolved,
		}
		item.Presence.Declared = true
		if resolved.IsLocal {
			item.RepoDir = resolved.Spec.Path
		} else {
			item.RepoDir = p.RepoDir(resolved.Identity.Host, resolved.Identity.Owner, resolved.Identity.Repo)
		}
		diff.byKey[item.Key] = len(diff.Items)
		diff.Items = append(diff.Items, item)
	}

	fishDir := p.FishConfigDir()
	for i := range lock.Plugins {
		// Copy so the diff stays a stable snapshot while commands mutate
		// the lockfile.
		entry := lock.Plugins[i]
		idx, declared := diff.byKey[entry.Source]
		if !declared {
			item := Item{
				Key:     entry.Source,
				RepoDir: EntryRepoDir(entry, p),
			}
			diff.byKey[item.Key] = len(diff.Items)
			diff.Items = append(diff.Items, item)
			idx = len(diff.Items) - 1
		}
		diff.Items[idx].Entry = &entry
		diff.Items[idx].Presence.Locked = true

		for _, record := range entry.Files {
			if _, err := os.Stat(record.Path(fishDir)); err != nil {
				diff.Items[idx].MissingFiles = append(diff.Items[idx].MissingFiles, record)
			}
		}
	}

	for i := range diff.Items {
		if diff.Items[i].RepoDir == "" {
			continue
		}
		if _, err := os.Stat(diff.Items[i].RepoDir); err == nil {
			diff.Items[i].Presence.CloneOnDisk = true
		}
	}

	return diff, nil
}

// EntryRepoDir derives the clone directory for a lock entry from its
// recorded repo shorthand or local path. Empty means the entry's repo
// cannot be parsed.
func EntryRepoDir(entry lockfile.Entry, p paths.Paths) string {
	if entry.IsLocal() {
		return entry.Source
	}
	identity, err := target.Identity(entry.Repo)
	if err != nil {
		return ""
	}
	return p.RepoDir(identity.Host, identity.Owner, identity.Repo)
}

// Get returns the item for a lockfile key, or nil.
func (d *Diff) Get(key string) *Item {
	if i, ok := d.byKey[key]; ok {
		return &d.Items[i]
	}
	return nil
}

// Declared projects the declared targets in declaration order. This is the
// input to install-from-config.
func (d *Diff) Declared() []types.ResolvedTarget {
	var out []types.ResolvedTarget
	for _, item := range d.Items {
		if item.Presence.Declared {
			out = append(out, item.Target)
		}
	}
	return out
}

// Undeclared projects the lock entries with no declared counterpart, in
// lock order. This is the prune set.
func (d *Diff) Undeclared() []lockfile.Entry {
	var out []lockfile.Entry
	for _, item := range d.Items {
		if item.Presence.Locked && !item.Presence.Declared {
			out = append(out, *item.Entry)
		}
	}
	return out
}

// DeclaredSelector returns the selector declared for a lockfile key, or
// nil when the source is undeclared or declared without one. Upgrade
// honors this; everything else re-resolves to the default HEAD.
func (d *Diff) DeclaredSelector(key string) *types.Selector {
	item := d.Get(key)
	if item == nil || !item.Presence.Declared {
		return nil
	}
	return item.Target.Spec.Selector
}
