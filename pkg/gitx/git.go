package gitx

import (
	"context"
	"errors"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
)

const originRemote = "origin"

// fetchRefSpecs mirrors every remote branch and tag so selector resolution
// sees the full picture, including tags not reachable from any branch.
var fetchRefSpecs = []gitconfig.RefSpec{
	"+refs/heads/*:refs/remotes/origin/*",
	"+refs/tags/*:refs/tags/*",
}

// GitBackend implements Backend with go-git.
type GitBackend struct{}

// NewGitBackend returns the production git backend.
func NewGitBackend() *GitBackend {
	return &GitBackend{}
}

func (b *GitBackend) Clone(ctx context.Context, source, dest string) error {
	logger := log.With().Str("component", "gitx").Logger()
	logger.Debug().Str("source", source).Str("dest", dest).Msg("cloning")

	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  source,
		Tags: git.AllTags,
	})
	if err != nil {
		return pezerrors.Wrapf(err, pezerrors.ErrCloneFailed,
			"failed to clone %s", source).WithDetail("source", source)
	}
	return nil
}

func (b *GitBackend) ListRefs(ctx context.Context, dest string) (Refs, error) {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return Refs{}, pezerrors.Wrapf(err, pezerrors.ErrCloneFailed,
			"failed to open repository at %s", dest)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: originRemote,
		RefSpecs:   fetchRefSpecs,
		Tags:       git.AllTags,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Refs{}, pezerrors.Wrapf(err, pezerrors.ErrCloneFailed,
			"failed to fetch refs for %s", dest)
	}

	refs := Refs{Branches: map[string]string{}, Tags: map[string]string{}}
	iter, err := repo.References()
	if err != nil {
		return Refs{}, pezerrors.Wrap(err, pezerrors.ErrCloneFailed, "failed to enumerate refs")
	}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsRemote():
			branch := strings.TrimPrefix(name.String(), "refs/remotes/origin/")
			if branch == "HEAD" || branch == name.String() {
				return nil
			}
			refs.Branches[branch] = ref.Hash().String()
		case name.IsTag():
			refs.Tags[name.Short()] = b.peelTag(repo, ref)
		}
		return nil
	})
	if err != nil {
		return Refs{}, pezerrors.Wrap(err, pezerrors.ErrCloneFailed, "failed to enumerate refs")
	}
	return refs, nil
}

// peelTag resolves an annotated tag to the commit it annotates.
// Lightweight tags already point at the commit.
func (b *GitBackend) peelTag(repo *git.Repository, ref *plumbing.Reference) string {
	if tag, err := repo.TagObject(ref.Hash()); err == nil {
		if commit, err := tag.Commit(); err == nil {
			return commit.Hash.String()
		}
		return tag.Target.String()
	}
	return ref.Hash().String()
}

func (b *GitBackend) DefaultHead(ctx context.Context, dest string) (string, error) {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return "", pezerrors.Wrapf(err, pezerrors.ErrCloneFailed,
			"failed to open repository at %s", dest)
	}

	// Ask the remote which branch HEAD points at; that tracks default
	// branch renames the local clone never saw.
	if sha, ok := b.remoteHead(ctx, repo); ok {
		return sha, nil
	}

	// Offline fallbacks: the origin/HEAD symref recorded at clone time,
	// then whatever HEAD resolves to.
	if ref, err := repo.Reference("refs/remotes/origin/HEAD", true); err == nil {
		return ref.Hash().String(), nil
	}
	head, err := repo.Head()
	if err != nil {
		return "", pezerrors.Wrap(err, pezerrors.ErrRefNotFound,
			"cannot determine the default branch head")
	}
	return head.Hash().String(), nil
}

func (b *GitBackend) remoteHead(ctx context.Context, repo *git.Repository) (string, bool) {
	remote, err := repo.Remote(originRemote)
	if err != nil {
		return "", false
	}
	listed, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		log.Debug().Err(err).Msg("remote list failed, falling back to local refs")
		return "", false
	}

	var headTarget plumbing.ReferenceName
	byName := make(map[plumbing.ReferenceName]*plumbing.Reference, len(listed))
	for _, ref := range listed {
		byName[ref.Name()] = ref
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference {
			headTarget = ref.Target()
		}
	}
	if headTarget == "" {
		return "", false
	}
	if ref, ok := byName[headTarget]; ok {
		return ref.Hash().String(), true
	}
	return "", false
}

func (b *GitBackend) Checkout(ctx context.Context, dest, rev string) (string, error) {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return "", pezerrors.Wrapf(err, pezerrors.ErrCloneFailed,
			"failed to open repository at %s", dest)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", pezerrors.Wrapf(err, pezerrors.ErrRefNotFound,
			"commit %q not found", rev).WithDetail("rev", rev)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", pezerrors.Wrap(err, pezerrors.ErrCloneFailed, "failed to open worktree")
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", pezerrors.Wrapf(err, pezerrors.ErrRefNotFound,
			"failed to check out %q", rev).WithDetail("rev", rev)
	}

	log.Debug().Str("dest", dest).Str("rev", rev).Str("commit", hash.String()).Msg("checked out")
	return hash.String(), nil
}
