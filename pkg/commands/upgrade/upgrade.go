// Package upgrade implements the upgrade command. It walks lock entries
// rather than declared specs: only plugins that are actually installed can
// move, and each one re-resolves its declared selector (default head when
// the manifest pins nothing) before re-materializing.
package upgrade

import (
	"context"
	"os"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/installer"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/materialize"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/reconcile"
	"github.com/arthur-debert/pez/pkg/resolver"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// UpgradePluginsOptions defines the options for the UpgradePlugins command.
type UpgradePluginsOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Backend performs the git operations.
	Backend gitx.Backend
	// Emitter fires conf.d events after successful copies.
	Emitter *shell.Emitter
	// Names restricts the upgrade to these plugin names. Empty upgrades
	// every lock entry.
	Names []string
}

// UpgradePluginsResult carries the per-plugin report.
type UpgradePluginsResult struct {
	Report types.Report
}

// UpgradePlugins re-resolves installed plugins and re-materializes the ones
// whose commit moved. The lockfile is saved afterwards.
func UpgradePlugins(ctx context.Context, opts UpgradePluginsOptions) (*UpgradePluginsResult, error) {
	log := logging.GetLogger("commands.upgrade")
	log.Debug().Strs("names", opts.Names).Msg("starting upgrade")

	cfg, err := config.LoadOrDefault(opts.Paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(opts.Paths.LockFilePath())
	if err != nil {
		return nil, err
	}
	diff, err := reconcile.Compute(cfg, lock, opts.Paths)
	if err != nil {
		return nil, err
	}

	orch := installer.New(opts.Backend, opts.Paths, opts.Emitter)
	destSet := orch.SeedDestinations(lock)

	result := &UpgradePluginsResult{}
	for _, entry := range selectEntries(lock, opts.Names, &result.Report) {
		result.Report.Add(upgradeOne(ctx, orch, diff, lock, destSet, entry, opts))
	}

	if err := lockfile.Save(opts.Paths.LockFilePath(), lock); err != nil {
		return nil, err
	}
	return result, nil
}

// selectEntries picks the lock entries to upgrade. Unknown names become
// failed results so one typo does not abort the rest of the batch.
func selectEntries(lock *lockfile.LockFile, names []string, report *types.Report) []lockfile.Entry {
	if len(names) == 0 {
		return append([]lockfile.Entry(nil), lock.Plugins...)
	}

	var entries []lockfile.Entry
	for _, name := range names {
		entry := lock.GetByName(name)
		if entry == nil {
			report.Add(types.TargetResult{
				Name:  name,
				State: types.StateFailed,
				Err: pezerrors.Newf(pezerrors.ErrPluginNotFound,
					"plugin not installed: %s", name),
			})
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

func upgradeOne(ctx context.Context, orch *installer.Orchestrator, diff *reconcile.Diff,
	lock *lockfile.LockFile, destSet *materialize.DestinationSet, entry lockfile.Entry,
	opts UpgradePluginsOptions) types.TargetResult {

	log := logging.GetLogger("commands.upgrade")
	result := types.TargetResult{Name: entry.Name, Source: entry.Repo}

	if entry.IsLocal() {
		result.State = types.StateSkipped
		result.Reason = "local plugin; use pez install --force to refresh"
		result.CommitSHA = entry.CommitSHA
		return result
	}

	identity, err := target.Identity(entry.Repo)
	if err != nil {
		result.State = types.StateFailed
		result.Err = pezerrors.Wrapf(err, pezerrors.ErrLockfileInconsistency,
			"lock entry %q has an unparseable repo", entry.Name)
		return result
	}
	repoDir := opts.Paths.RepoDir(identity.Host, identity.Owner, identity.Repo)

	if _, err := os.Stat(repoDir); err != nil {
		result.State = types.StateSkipped
		result.Reason = "repository missing on disk; run pez install first"
		return result
	}

	refs, err := opts.Backend.ListRefs(ctx, repoDir)
	if err != nil {
		result.State = types.StateFailed
		result.Err = err
		return result
	}
	selection, err := resolver.Resolve(diff.DeclaredSelector(entry.Source), refs, func() (string, error) {
		return opts.Backend.DefaultHead(ctx, repoDir)
	})
	if err != nil {
		result.State = types.StateFailed
		result.Err = err
		return result
	}

	if selection.CommitSHA == entry.CommitSHA {
		result.State = types.StateSkipped
		result.Reason = "already up to date"
		result.CommitSHA = entry.CommitSHA
		return result
	}

	log.Debug().Str("plugin", entry.Name).
		Str("from", entry.CommitSHA).Str("to", selection.CommitSHA).
		Msg("commit moved")

	sha, err := opts.Backend.Checkout(ctx, repoDir, selection.CommitSHA)
	if err != nil {
		result.State = types.StateFailed
		result.Err = err
		return result
	}

	// Force overwrites: the plugin's own files are being replaced, so a
	// pre-existing destination is expected rather than a conflict.
	state, reason, err := orch.Materialize(ctx, installer.MaterializeRequest{
		Name:      entry.Name,
		Key:       entry.Source,
		RepoLabel: entry.Repo,
		RepoDir:   repoDir,
		CommitSHA: sha,
		Force:     true,
		Event:     types.EventUpdate,
	}, lock, destSet)

	result.State = state
	result.Reason = reason
	result.Err = err
	if state == types.StateRecorded {
		result.PreviousSHA = entry.CommitSHA
		result.CommitSHA = sha
	}
	return result
}
