// Package installer drives install batches through the per-target state
// machine: Pending → Cloning → Resolving → Copying → Recorded, with early
// exits to Skipped and Failed. One target never aborts the batch; the
// report carries every outcome.
package installer

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/materialize"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/resolver"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/types"
)

// Options tune one orchestrator run.
type Options struct {
	// Force removes existing clones and overwrites existing files.
	Force bool

	// Jobs bounds concurrent clone+resolve work when Concurrent is set.
	Jobs int

	// Concurrent is set for CLI-argument batches. Config-driven batches
	// stay fully sequential so first-writer-wins follows declaration
	// order exactly.
	Concurrent bool
}

// Orchestrator runs install batches against one lockfile.
type Orchestrator struct {
	backend gitx.Backend
	paths   paths.Paths
	emitter *shell.Emitter
	log     zerolog.Logger
}

// New returns an orchestrator.
func New(backend gitx.Backend, p paths.Paths, emitter *shell.Emitter) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		paths:   p,
		emitter: emitter,
		log:     log.With().Str("component", "installer").Logger(),
	}
}

type action int

const (
	actionClone action = iota
	actionRepair
	actionSkip
	actionFail
)

type item struct {
	target  types.ResolvedTarget
	name    string
	key     string // lockfile source identity
	repoDir string
	action  action
	reason  string
	err     error

	// set by the clone+resolve phase
	selection types.Selection
}

// Run processes targets in order and updates lock in place. The caller
// persists the lockfile afterwards; Run itself never writes it.
func (o *Orchestrator) Run(ctx context.Context, targets []types.ResolvedTarget, lock *lockfile.LockFile, opts Options) types.Report {
	items := make([]*item, len(targets))
	for i, target := range targets {
		items[i] = o.prepare(target, lock, opts.Force)
	}

	o.cloneAndResolve(ctx, items, opts)

	report := types.Report{}
	destSet := o.SeedDestinations(lock)
	for _, it := range items {
		report.Add(o.finish(ctx, it, lock, destSet, opts))
	}
	return report
}

// prepare applies the existing-clone policy for one target.
func (o *Orchestrator) prepare(target types.ResolvedTarget, lock *lockfile.LockFile, force bool) *item {
	it := &item{
		target: target,
		name:   target.Spec.DisplayName(),
		key:    target.LockKey(),
	}

	if target.IsLocal {
		it.repoDir = target.Spec.Path
		it.action = actionClone // no clone happens; copy phase reads the path directly
		if _, err := os.Stat(target.Spec.Path); err != nil {
			it.action = actionFail
			it.err = pezerrors.Wrapf(err, pezerrors.ErrFilesystem,
				"local plugin path %s does not exist", target.Spec.Path)
		} else if lock.Get(it.key) != nil && !force {
			it.action = actionSkip
			it.reason = "already installed"
		}
		return it
	}

	it.repoDir = o.paths.RepoDir(target.Identity.Host, target.Identity.Owner, target.Identity.Repo)
	entry := lock.Get(it.key)
	_, statErr := os.Stat(it.repoDir)
	diskExists := statErr == nil

	switch {
	case entry == nil && !diskExists:
		it.action = actionClone

	case entry == nil && diskExists && !force:
		if target.Provenance == types.FromCLI {
			it.action = actionSkip
			it.reason = "clone exists but is not tracked by the lockfile; use --force to reinstall"
			o.log.Warn().Str("plugin", it.name).Str("dir", it.repoDir).
				Msg("clone exists but is not tracked by the lockfile")
		} else {
			it.action = actionFail
			it.err = pezerrors.Newf(pezerrors.ErrLockfileInconsistency,
				"clone of %s exists at %s but the lockfile has no entry; use --force to repair",
				it.name, it.repoDir).WithDetail("dir", it.repoDir)
		}

	case entry == nil && diskExists && force:
		it.action = actionClone
		it.err = o.removeClone(it.repoDir)

	case entry != nil && diskExists && !force:
		it.action = actionSkip
		it.reason = "already installed"

	case entry != nil && diskExists && force:
		it.action = actionClone
		it.err = o.removeClone(it.repoDir)

	default: // entry != nil && !diskExists
		it.action = actionRepair
	}

	if it.err != nil && it.action != actionFail {
		it.action = actionFail
	}
	return it
}

func (o *Orchestrator) removeClone(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrFilesystem, "failed to remove %s", dir)
	}
	return nil
}

// cloneAndResolve runs the Cloning and Resolving phases. CLI batches fan
// out bounded by Jobs; config batches keep strict order.
func (o *Orchestrator) cloneAndResolve(ctx context.Context, items []*item, opts Options) {
	if opts.Concurrent && opts.Jobs > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Jobs)
		for _, it := range items {
			it := it
			g.Go(func() error {
				o.cloneResolveOne(gctx, it)
				return nil
			})
		}
		_ = g.Wait()
		return
	}
	for _, it := range items {
		o.cloneResolveOne(ctx, it)
	}
}

func (o *Orchestrator) cloneResolveOne(ctx context.Context, it *item) {
	if it.target.IsLocal || it.action == actionSkip || it.action == actionFail {
		return
	}

	logger := o.log.With().Str("plugin", it.name).Logger()
	logger.Info().Str("source", it.target.Source).Msg("cloning")
	if err := o.backend.Clone(ctx, it.target.Source, it.repoDir); err != nil {
		it.action = actionFail
		it.err = err
		return
	}

	if it.action == actionRepair {
		// The lockfile is the source of truth for a repair: restore the
		// recorded commit instead of re-resolving the selector.
		return
	}

	refs, err := o.backend.ListRefs(ctx, it.repoDir)
	if err != nil {
		it.action = actionFail
		it.err = err
		return
	}
	selection, err := resolver.Resolve(it.target.Spec.Selector, refs, func() (string, error) {
		return o.backend.DefaultHead(ctx, it.repoDir)
	})
	if err != nil {
		it.action = actionFail
		it.err = err
		return
	}

	sha, err := o.backend.Checkout(ctx, it.repoDir, selection.CommitSHA)
	if err != nil {
		it.action = actionFail
		it.err = err
		return
	}
	selection.CommitSHA = sha
	it.selection = selection
	logger.Debug().Str("commit", sha).Str("ref_kind", string(selection.RefKind)).Msg("resolved")
}

// SeedDestinations claims every path already recorded in the lockfile so
// new copies collide deterministically with installed plugins.
func (o *Orchestrator) SeedDestinations(lock *lockfile.LockFile) *materialize.DestinationSet {
	set := materialize.NewDestinationSet()
	fishDir := o.paths.FishConfigDir()
	for _, entry := range lock.Plugins {
		for _, record := range entry.Files {
			set.Seed(entry.Name, []string{record.Path(fishDir)})
		}
	}
	return set
}

// finish runs the sequential Copying phase for one target and builds its
// result.
func (o *Orchestrator) finish(ctx context.Context, it *item, lock *lockfile.LockFile, destSet *materialize.DestinationSet, opts Options) types.TargetResult {
	result := types.TargetResult{
		Name:   it.name,
		Source: it.target.Spec.SourceID(),
	}

	switch it.action {
	case actionSkip:
		result.State = types.StateSkipped
		result.Reason = it.reason
		if entry := lock.Get(it.key); entry != nil {
			result.CommitSHA = entry.CommitSHA
		}
		return result
	case actionFail:
		result.State = types.StateFailed
		result.Err = it.err
		return result
	}

	if it.target.IsLocal {
		it.selection = types.Selection{CommitSHA: types.LocalCommitSHA}
	} else if it.action == actionRepair {
		entry := lock.Get(it.key)
		sha, err := o.backend.Checkout(ctx, it.repoDir, entry.CommitSHA)
		if err != nil {
			result.State = types.StateFailed
			result.Err = err
			return result
		}
		it.selection = types.Selection{CommitSHA: sha, RefKind: types.SelectorCommit}
	}

	state, reason, err := o.Materialize(ctx, MaterializeRequest{
		Name:      it.name,
		Key:       it.key,
		RepoLabel: o.repoLabel(it.target),
		RepoDir:   it.repoDir,
		CommitSHA: it.selection.CommitSHA,
		Force:     opts.Force,
		Event:     types.EventInstall,
	}, lock, destSet)

	result.State = state
	result.Reason = reason
	result.Err = err
	if state == types.StateRecorded {
		result.CommitSHA = it.selection.CommitSHA
	}
	return result
}

// MaterializeRequest names one plugin whose checked-out tree should replace
// its recorded files.
type MaterializeRequest struct {
	Name      string
	Key       string
	RepoLabel string
	RepoDir   string
	CommitSHA string
	Force     bool
	Event     types.Event
}

// Materialize copies a plugin's assets into the fish config dir and updates
// its lockfile entry, enforcing the all-or-nothing duplicate policy.
// Upgrades reuse it with EventUpdate after checking out the new commit.
func (o *Orchestrator) Materialize(ctx context.Context, req MaterializeRequest, lock *lockfile.LockFile, destSet *materialize.DestinationSet) (types.TargetState, string, error) {
	assets, err := materialize.Plan(req.RepoDir)
	if err != nil {
		return types.StateFailed, "", err
	}
	if len(assets) == 0 {
		o.log.Warn().Str("plugin", req.Name).
			Msg("no valid files found; the plugin has nothing to copy")
	}

	// Re-installs drop their previous files first so they never collide
	// with themselves.
	oldEntry := lock.Get(req.Key)
	if oldEntry != nil {
		if err := materialize.Remove(o.paths.FishConfigDir(), oldEntry.Files); err != nil {
			return types.StateFailed, "", err
		}
		destSet.Release(oldEntry.Name)
	}

	records, err := materialize.Copy(o.paths.FishConfigDir(), materialize.CopyRequest{
		PluginName:     req.Name,
		RepoPath:       req.RepoDir,
		Assets:         assets,
		FailOnExisting: !req.Force,
	}, destSet)
	if err != nil {
		if pezerrors.IsErrorCode(err, pezerrors.ErrDuplicateDestination) {
			// All-or-nothing: the plugin contributed no files, so it gets
			// no lockfile entry either. A stale entry whose files were
			// just removed must go.
			if oldEntry != nil {
				lock.Remove(req.Key)
			}
			o.log.Warn().Str("plugin", req.Name).Msg(err.Error())
			return types.StateSkipped, err.Error(), nil
		}
		return types.StateFailed, "", err
	}

	lock.Upsert(lockfile.Entry{
		Name:      req.Name,
		Repo:      req.RepoLabel,
		Source:    req.Key,
		CommitSHA: req.CommitSHA,
		Files:     records,
	})

	if err := o.emitter.EmitForRecords(ctx, records, req.Event); err != nil {
		o.log.Warn().Err(err).Str("plugin", req.Name).Msg("event emission failed")
	}

	return types.StateRecorded, "", nil
}

func (o *Orchestrator) repoLabel(target types.ResolvedTarget) string {
	if target.IsLocal {
		return target.Spec.Path
	}
	return target.Identity.DisplayName()
}
