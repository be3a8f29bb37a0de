// Package uninstall implements the uninstall command. Removal is
// lock-driven: the recorded files, the clone directory, the lock entry and
// the matching pez.toml entry all go, so the declared and recorded state
// stay in sync.
package uninstall

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/materialize"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// UninstallPluginsOptions defines the options for the UninstallPlugins
// command.
type UninstallPluginsOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Emitter fires conf.d uninstall events before files are removed.
	Emitter *shell.Emitter
	// Names identifies the plugins to remove: display name, repo
	// shorthand, or source.
	Names []string
	// Force removes recorded files even when the clone directory is gone.
	Force bool
}

// UninstallPluginsResult carries the per-plugin report.
type UninstallPluginsResult struct {
	Report types.Report
}

// ReadNames parses newline-separated plugin names, skipping blanks. It
// feeds --stdin invocations from the fish wrapper.
func ReadNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, pezerrors.Wrap(err, pezerrors.ErrInvalidInput, "failed to read plugin names")
	}
	return names, nil
}

// UninstallPlugins removes the named plugins and persists the lockfile and
// manifest.
func UninstallPlugins(ctx context.Context, opts UninstallPluginsOptions) (*UninstallPluginsResult, error) {
	log := logging.GetLogger("commands.uninstall")
	log.Debug().Strs("names", opts.Names).Bool("force", opts.Force).Msg("starting uninstall")

	if len(opts.Names) == 0 {
		return nil, pezerrors.New(pezerrors.ErrInvalidInput, "no plugins specified")
	}

	cfg, err := config.LoadOrDefault(opts.Paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(opts.Paths.LockFilePath())
	if err != nil {
		return nil, err
	}

	result := &UninstallPluginsResult{}
	dirty := false
	for _, name := range opts.Names {
		res, changed := uninstallOne(ctx, name, cfg, lock, opts)
		dirty = dirty || changed
		result.Report.Add(res)
	}

	if err := lockfile.Save(opts.Paths.LockFilePath(), lock); err != nil {
		return nil, err
	}
	if dirty {
		if err := config.Save(opts.Paths.ConfigFilePath(), cfg); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func uninstallOne(ctx context.Context, name string, cfg *config.Config,
	lock *lockfile.LockFile, opts UninstallPluginsOptions) (types.TargetResult, bool) {

	found := lock.GetByName(name)
	if found == nil {
		return types.TargetResult{
			Name:  name,
			State: types.StateFailed,
			Err: pezerrors.Newf(pezerrors.ErrPluginNotFound,
				"plugin not installed: %s", name),
		}, false
	}
	// Copy: RemoveEntry shifts the slice the pointer came from.
	entry := *found

	result := RemoveEntry(ctx, entry, lock, RemoveOptions{
		Paths:   opts.Paths,
		Emitter: opts.Emitter,
		Force:   opts.Force,
	})
	if result.State != types.StateRecorded {
		return result, false
	}

	dirty := false
	if i := findConfigEntry(cfg, entry); i >= 0 {
		cfg.Remove(i)
		dirty = true
	}
	return result, dirty
}

// RemoveOptions configures the removal of one lock entry.
type RemoveOptions struct {
	Paths   paths.Paths
	Emitter *shell.Emitter
	Force   bool
}

// RemoveEntry deletes an entry's recorded files, its clone directory and
// its lock record. The manifest is left alone; prune candidates have no
// manifest entry to begin with.
func RemoveEntry(ctx context.Context, entry lockfile.Entry, lock *lockfile.LockFile, opts RemoveOptions) types.TargetResult {
	log := logging.GetLogger("commands.uninstall")
	result := types.TargetResult{
		Name:      entry.Name,
		Source:    entry.Repo,
		CommitSHA: entry.CommitSHA,
	}

	// Local sources belong to the user; only remote clones get removed.
	repoDir := ""
	if !entry.IsLocal() {
		identity, err := target.Identity(entry.Repo)
		if err != nil {
			result.State = types.StateFailed
			result.Err = pezerrors.Wrapf(err, pezerrors.ErrLockfileInconsistency,
				"lock entry %q has an unparseable repo", entry.Name)
			return result
		}
		repoDir = opts.Paths.RepoDir(identity.Host, identity.Owner, identity.Repo)

		if _, err := os.Stat(repoDir); err != nil {
			if !opts.Force {
				result.State = types.StateSkipped
				result.Reason = "repository missing on disk; use --force to remove its recorded files"
				return result
			}
			repoDir = ""
		}
	}

	// Hooks fire while the conf.d files still exist, mirroring install
	// hooks firing after they appear.
	if err := opts.Emitter.EmitForRecords(ctx, entry.Files, types.EventUninstall); err != nil {
		log.Warn().Err(err).Str("plugin", entry.Name).Msg("event emission failed")
	}

	if err := materialize.Remove(opts.Paths.FishConfigDir(), entry.Files); err != nil {
		result.State = types.StateFailed
		result.Err = err
		return result
	}
	if repoDir != "" {
		if err := os.RemoveAll(repoDir); err != nil {
			result.State = types.StateFailed
			result.Err = pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"failed to remove repository %s", repoDir)
			return result
		}
	}
	lock.Remove(entry.Source)

	result.State = types.StateRecorded
	return result
}

func findConfigEntry(cfg *config.Config, entry lockfile.Entry) int {
	if i := cfg.FindBySource(entry.Repo); i >= 0 {
		return i
	}
	if i := cfg.FindBySource(entry.Source); i >= 0 {
		return i
	}
	return cfg.FindByName(entry.Name)
}
