// Package prune implements the prune command: lock entries with no
// pez.toml counterpart are uninstalled. An empty manifest makes every
// plugin a candidate, which is usually a loading mistake rather than
// intent, so that case needs explicit confirmation.
package prune

import (
	"context"

	"github.com/arthur-debert/pez/pkg/commands/uninstall"
	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/reconcile"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/types"
	"github.com/arthur-debert/pez/pkg/ui/confirmations"
)

// PrunePluginsOptions defines the options for the PrunePlugins command.
type PrunePluginsOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Emitter fires conf.d uninstall events before files are removed.
	Emitter *shell.Emitter
	// Prompter gates the remove-everything case. Nil declines it.
	Prompter confirmations.Prompter
	// DryRun reports candidates without removing anything.
	DryRun bool
	// Force removes recorded files even when the clone directory is gone.
	Force bool
}

// PrunePluginsResult carries the removal report plus what prune saw before
// acting, so callers can render dry runs and aborts.
type PrunePluginsResult struct {
	Report types.Report

	// Candidates are the lock entries not declared in pez.toml.
	Candidates []lockfile.Entry

	// EmptyConfig is true when the manifest declares no plugins at all.
	EmptyConfig bool

	// Aborted is true when the user declined the remove-everything prompt.
	Aborted bool
}

// PrunePlugins removes undeclared plugins and persists the lockfile.
func PrunePlugins(ctx context.Context, opts PrunePluginsOptions) (*PrunePluginsResult, error) {
	log := logging.GetLogger("commands.prune")
	log.Debug().Bool("dry_run", opts.DryRun).Bool("force", opts.Force).Msg("starting prune")

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

	result := &PrunePluginsResult{
		Candidates:  diff.Undeclared(),
		EmptyConfig: len(cfg.Plugins) == 0,
	}
	if len(result.Candidates) == 0 || opts.DryRun {
		return result, nil
	}

	if result.EmptyConfig {
		prompter := opts.Prompter
		if prompter == nil {
			prompter = confirmations.Auto(false)
		}
		ok, err := prompter.Confirm("No plugins are declared in pez.toml; remove every installed plugin?")
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Aborted = true
			return result, nil
		}
	}

	for _, entry := range result.Candidates {
		result.Report.Add(uninstall.RemoveEntry(ctx, entry, lock, uninstall.RemoveOptions{
			Paths:   opts.Paths,
			Emitter: opts.Emitter,
			Force:   opts.Force,
		}))
	}

	if err := lockfile.Save(opts.Paths.LockFilePath(), lock); err != nil {
		return nil, err
	}
	return result, nil
}
