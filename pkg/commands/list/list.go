// Package list implements the list command. It reads the lockfile, never
// the manifest: what is listed is what is actually installed.
package list

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/reconcile"
	"github.com/arthur-debert/pez/pkg/resolver"
	"github.com/arthur-debert/pez/pkg/target"
)

// ListPluginsOptions defines the options for the ListPlugins command.
type ListPluginsOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Backend is only consulted with Outdated, to re-resolve selectors.
	Backend gitx.Backend
	// Outdated filters the listing to plugins whose resolved commit moved.
	Outdated bool
	// Jobs bounds concurrent ref probing when Outdated is set.
	Jobs int
}

// PluginInfo is one row of pez list.
type PluginInfo struct {
	Name      string `json:"name" yaml:"name"`
	Repo      string `json:"repo" yaml:"repo"`
	Source    string `json:"source" yaml:"source"`
	CommitSHA string `json:"commit_sha" yaml:"commit_sha"`
	// LatestSHA is the commit the declared selector resolves to today,
	// filled in by Outdated runs.
	LatestSHA string `json:"latest_sha,omitempty" yaml:"latest_sha,omitempty"`
	Local     bool   `json:"local" yaml:"local"`
}

// ListPluginsResult carries the rows to render.
type ListPluginsResult struct {
	Plugins []PluginInfo
}

// ListPlugins lists installed plugins. With Outdated, each remote entry's
// declared selector (default head when the manifest pins nothing) is
// re-resolved and only entries whose commit moved are returned.
func ListPlugins(ctx context.Context, opts ListPluginsOptions) (*ListPluginsResult, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Bool("outdated", opts.Outdated).Msg("starting list")

	lock, err := lockfile.Load(opts.Paths.LockFilePath())
	if err != nil {
		return nil, err
	}

	if !opts.Outdated {
		result := &ListPluginsResult{}
		for _, entry := range lock.Plugins {
			result.Plugins = append(result.Plugins, PluginInfo{
				Name:      entry.Name,
				Repo:      entry.Repo,
				Source:    entry.Source,
				CommitSHA: entry.CommitSHA,
				Local:     entry.IsLocal(),
			})
		}
		return result, nil
	}

	cfg, err := config.LoadOrDefault(opts.Paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	diff, err := reconcile.Compute(cfg, lock, opts.Paths)
	if err != nil {
		return nil, err
	}

	latest := probeLatest(ctx, lock.Plugins, diff, opts)

	result := &ListPluginsResult{}
	for i, entry := range lock.Plugins {
		if latest[i] == "" || latest[i] == entry.CommitSHA {
			continue
		}
		result.Plugins = append(result.Plugins, PluginInfo{
			Name:      entry.Name,
			Repo:      entry.Repo,
			Source:    entry.Source,
			CommitSHA: entry.CommitSHA,
			LatestSHA: latest[i],
		})
	}
	return result, nil
}

// probeLatest re-resolves every entry's selector, fanning out bounded by
// Jobs. Results are indexed like entries so the listing keeps lockfile
// order; an empty slot means the entry could not be checked and is treated
// as up to date.
func probeLatest(ctx context.Context, entries []lockfile.Entry, diff *reconcile.Diff, opts ListPluginsOptions) []string {
	latest := make([]string, len(entries))
	if opts.Jobs > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Jobs)
		for i, entry := range entries {
			i, entry := i, entry
			g.Go(func() error {
				if sha, ok := latestFor(gctx, entry, diff, opts); ok {
					latest[i] = sha
				}
				return nil
			})
		}
		_ = g.Wait()
		return latest
	}
	for i, entry := range entries {
		if sha, ok := latestFor(ctx, entry, diff, opts); ok {
			latest[i] = sha
		}
	}
	return latest
}

// latestFor re-resolves one entry's selector. Entries that cannot be
// checked, local ones and those whose clone or remote is unreachable, are
// reported as up to date rather than failing the listing.
func latestFor(ctx context.Context, entry lockfile.Entry, diff *reconcile.Diff, opts ListPluginsOptions) (string, bool) {
	log := logging.GetLogger("commands.list")

	if entry.IsLocal() {
		return "", false
	}
	identity, err := target.Identity(entry.Repo)
	if err != nil {
		log.Warn().Str("plugin", entry.Name).Msg("lock entry has an unparseable repo")
		return "", false
	}
	repoDir := opts.Paths.RepoDir(identity.Host, identity.Owner, identity.Repo)

	refs, err := opts.Backend.ListRefs(ctx, repoDir)
	if err != nil {
		log.Warn().Err(err).Str("plugin", entry.Name).Msg("could not list refs")
		return "", false
	}
	selection, err := resolver.Resolve(diff.DeclaredSelector(entry.Source), refs, func() (string, error) {
		return opts.Backend.DefaultHead(ctx, repoDir)
	})
	if err != nil {
		log.Warn().Err(err).Str("plugin", entry.Name).Msg("could not resolve selector")
		return "", false
	}
	return selection.CommitSHA, true
}
