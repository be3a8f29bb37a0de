// Package resolver picks the concrete commit a selector refers to, given a
// snapshot of a repository's refs. It performs no I/O of its own; resolving
// the default head is delegated to a callback so the git backend stays the
// only networked component.
package resolver

import (
	"strings"

	"github.com/rs/zerolog/log"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/types"
)

// HeadFunc resolves the commit sha of the remote default branch.
type HeadFunc func() (string, error)

// Resolve maps a selector to a Selection against the given refs.
//
// A nil selector follows the default head. Version selectors check
// branches before tags, so a branch named v2 wins over a tag named v2.
// Commit selectors pass through unchecked; a bogus sha surfaces at
// checkout instead.
func Resolve(sel *types.Selector, refs gitx.Refs, defaultHead HeadFunc) (types.Selection, error) {
	if sel == nil || sel.Latest() {
		sha, err := defaultHead()
		if err != nil {
			return types.Selection{}, err
		}
		return types.Selection{CommitSHA: sha, RefKind: types.SelectorLatest}, nil
	}

	switch sel.Kind {
	case types.SelectorCommit:
		return types.Selection{CommitSHA: sel.Value, RefKind: types.SelectorCommit}, nil

	case types.SelectorBranch:
		if sha, ok := refs.Branches[sel.Value]; ok {
			log.Debug().Str("branch", sel.Value).Str("commit", sha).Msg("resolved branch to commit")
			return types.Selection{CommitSHA: sha, RefKind: types.SelectorBranch}, nil
		}
		return types.Selection{}, pezerrors.Newf(pezerrors.ErrRefNotFound,
			"branch not found: %s", sel.Value).WithDetail("branch", sel.Value)

	case types.SelectorTag:
		if sha, ok := refs.Tags[sel.Value]; ok {
			log.Debug().Str("tag", sel.Value).Str("commit", sha).Msg("resolved tag to commit")
			return types.Selection{CommitSHA: sha, RefKind: types.SelectorTag}, nil
		}
		return types.Selection{}, pezerrors.Newf(pezerrors.ErrRefNotFound,
			"tag not found: %s", sel.Value).WithDetail("tag", sel.Value)

	case types.SelectorVersion:
		return resolveVersion(sel.Value, refs, defaultHead)
	}

	return types.Selection{}, pezerrors.Newf(pezerrors.ErrInternal,
		"unknown selector kind %q", sel.Kind)
}

func resolveVersion(v string, refs gitx.Refs, defaultHead HeadFunc) (types.Selection, error) {
	if strings.EqualFold(v, "latest") {
		sha, err := defaultHead()
		if err != nil {
			return types.Selection{}, err
		}
		return types.Selection{CommitSHA: sha, RefKind: types.SelectorLatest}, nil
	}

	if sha, ok := refs.Branches[v]; ok {
		log.Debug().Str("version", v).Str("commit", sha).Msg("version matched a branch")
		return types.Selection{CommitSHA: sha, RefKind: types.SelectorBranch}, nil
	}

	if tag, ok := pickTagForVersion(refs.TagNames(), v); ok {
		if sha, ok := refs.Tags[tag]; ok {
			log.Debug().Str("version", v).Str("tag", tag).Str("commit", sha).
				Msg("version matched a tag")
			return types.Selection{CommitSHA: sha, RefKind: types.SelectorTag}, nil
		}
	}

	return types.Selection{}, pezerrors.Newf(pezerrors.ErrRefNotFound,
		"no matching branch or tag for version: %s", v).WithDetail("version", v)
}
