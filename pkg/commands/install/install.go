// Package install implements the install command: explicit CLI targets
// are installed concurrently and declared in pez.toml, while a bare
// invocation replays the whole declared configuration sequentially.
package install

import (
	"context"

	"github.com/arthur-debert/pez/pkg/config"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/installer"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/reconcile"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// InstallPluginsOptions defines the options for the InstallPlugins command.
type InstallPluginsOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Backend performs the git operations.
	Backend gitx.Backend
	// Emitter fires conf.d events after successful copies.
	Emitter *shell.Emitter
	// Targets are the raw CLI arguments. Empty installs the declared
	// configuration.
	Targets []string
	// Force reclones existing repositories and overwrites existing files.
	Force bool
	// Jobs bounds clone and resolve concurrency for explicit targets.
	Jobs int
}

// InstallPluginsResult carries the per-target report plus the undeclared
// lock entries a config-driven run noticed.
type InstallPluginsResult struct {
	Report types.Report

	// Undeclared lists lock entries with no pez.toml counterpart, shown
	// as a prune hint after config-driven installs.
	Undeclared []lockfile.Entry
}

// InstallPlugins runs the install command and persists the lockfile and,
// for explicit targets, any new pez.toml entries.
func InstallPlugins(ctx context.Context, opts InstallPluginsOptions) (*InstallPluginsResult, error) {
	log := logging.GetLogger("commands.install")
	log.Debug().Strs("targets", opts.Targets).Bool("force", opts.Force).Msg("starting install")

	if len(opts.Targets) > 0 {
		return installTargets(ctx, opts)
	}
	return installFromConfig(ctx, opts)
}

func installTargets(ctx context.Context, opts InstallPluginsOptions) (*InstallPluginsResult, error) {
	parsed, err := target.ParseAll(opts.Targets)
	if err != nil {
		return nil, err
	}
	resolved, err := target.ResolveAll(parsed)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(resolved))
	for _, rt := range resolved {
		if prev, ok := seen[rt.LockKey()]; ok {
			return nil, pezerrors.Newf(pezerrors.ErrConfigValidation,
				"duplicate target %q (also given as %q)", rt.Raw, prev)
		}
		seen[rt.LockKey()] = rt.Raw
	}

	cfg, err := config.LoadOrDefault(opts.Paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(opts.Paths.LockFilePath())
	if err != nil {
		return nil, err
	}

	orch := installer.New(opts.Backend, opts.Paths, opts.Emitter)
	report := orch.Run(ctx, resolved, lock, installer.Options{
		Force:      opts.Force,
		Jobs:       opts.Jobs,
		Concurrent: true,
	})

	// Declare every target that ended up tracked so the next
	// config-driven run reproduces this state.
	dirty := false
	for _, rt := range resolved {
		if lock.Get(rt.LockKey()) == nil {
			continue
		}
		if cfg.FindBySource(rt.Spec.SourceID()) >= 0 {
			continue
		}
		cfg.Add(rt.Spec)
		dirty = true
	}

	if err := lockfile.Save(opts.Paths.LockFilePath(), lock); err != nil {
		return nil, err
	}
	if dirty {
		if err := config.Save(opts.Paths.ConfigFilePath(), cfg); err != nil {
			return nil, err
		}
	}
	return &InstallPluginsResult{Report: report}, nil
}

func installFromConfig(ctx context.Context, opts InstallPluginsOptions) (*InstallPluginsResult, error) {
	cfg, err := config.Load(opts.Paths.ConfigFilePath())
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
	report := orch.Run(ctx, diff.Declared(), lock, installer.Options{
		Force: opts.Force,
		Jobs:  opts.Jobs,
	})

	if err := lockfile.Save(opts.Paths.LockFilePath(), lock); err != nil {
		return nil, err
	}
	return &InstallPluginsResult{
		Report:     report,
		Undeclared: diff.Undeclared(),
	}, nil
}
