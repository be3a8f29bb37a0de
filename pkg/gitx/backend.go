// Package gitx is the only component that talks to git repositories. It
// exposes a small Backend interface the install orchestrator drives, a
// go-git implementation, and an in-memory fake for tests.
package gitx

import "context"

// Refs is a snapshot of a clone's remote branches and tags, each mapped to
// the commit sha it points at. Annotated tags are peeled to their commit.
type Refs struct {
	Branches map[string]string
	Tags     map[string]string
}

// TagNames returns the tag names in unspecified order.
func (r Refs) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for name := range r.Tags {
		names = append(names, name)
	}
	return names
}

// Backend performs git operations against one clone directory. All
// network activity happens in Clone, ListRefs and DefaultHead; Checkout
// is purely local.
type Backend interface {
	// Clone clones source into dest, which must not exist yet.
	Clone(ctx context.Context, source, dest string) error

	// ListRefs fetches from origin and returns the branch and tag snapshot.
	ListRefs(ctx context.Context, dest string) (Refs, error)

	// DefaultHead returns the commit sha of the remote default branch.
	DefaultHead(ctx context.Context, dest string) (string, error)

	// Checkout detaches the worktree at rev (sha, short sha, tag or
	// branch) and returns the full commit sha it landed on.
	Checkout(ctx context.Context, dest, rev string) (string, error)
}
