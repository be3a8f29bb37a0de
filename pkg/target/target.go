// Package target parses plugin identifiers into canonical install targets
// and computes the clone identity the git backend needs.
//
// A raw CLI argument goes through Parse; a manifest entry is wrapped by
// FromSpec. Both feed Resolve, which yields the unit of work the install
// orchestrator consumes.
package target

import (
	"net/url"
	"path/filepath"
	"strings"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/types"
)

// Parse turns one raw command-line argument into an install target.
//
// Rules, in order: a path-looking string (absolute, ~-prefixed, or
// explicitly relative) is a Path source with no selector; a string
// containing "://" is a URL source and keeps any trailing @ref as part of
// the literal URL; everything else splits on the first unescaped @ into
// repo shorthand and an optional ref suffix.
func Parse(raw string) (types.InstallTarget, error) {
	target := types.InstallTarget{Provenance: types.FromCLI, Raw: raw}

	if strings.TrimSpace(raw) == "" {
		return target, pezerrors.New(pezerrors.ErrMalformedTarget, "empty plugin target")
	}

	if isPathLike(raw) {
		abs, err := normalizePath(raw)
		if err != nil {
			return target, err
		}
		target.Spec = types.PluginSpec{Kind: types.SourcePath, Path: abs}
		return target, nil
	}

	if strings.Contains(raw, "://") {
		target.Spec = types.PluginSpec{Kind: types.SourceURL, URL: raw}
		return target, nil
	}

	repoPart, refPart, hasRef := splitUnescapedAt(raw)
	if err := validateShorthand(repoPart, raw); err != nil {
		return target, err
	}

	spec := types.PluginSpec{Kind: types.SourceRepo, Repo: repoPart}
	if hasRef {
		sel, err := parseRef(refPart, raw)
		if err != nil {
			return target, err
		}
		spec.Selector = sel
	}
	target.Spec = spec
	return target, nil
}

// ParseAll parses every raw argument, failing on the first malformed one.
func ParseAll(raws []string) ([]types.InstallTarget, error) {
	targets := make([]types.InstallTarget, 0, len(raws))
	for _, raw := range raws {
		t, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// FromSpec wraps a manifest entry as a config-originated install target.
func FromSpec(spec types.PluginSpec) types.InstallTarget {
	return types.InstallTarget{
		Spec:       spec,
		Provenance: types.FromConfig,
		Raw:        spec.SourceID(),
	}
}

// Resolve computes the clone identity and source URL for a target. Local
// path targets resolve to themselves and skip the git backend entirely.
func Resolve(t types.InstallTarget) (types.ResolvedTarget, error) {
	resolved := types.ResolvedTarget{InstallTarget: t}

	switch t.Spec.Kind {
	case types.SourcePath:
		abs, err := normalizePath(t.Spec.Path)
		if err != nil {
			return resolved, err
		}
		resolved.Spec.Path = abs
		resolved.IsLocal = true
		return resolved, nil

	case types.SourceRepo:
		identity, err := identityFromShorthand(t.Spec.Repo)
		if err != nil {
			return resolved, err
		}
		resolved.Identity = identity
		resolved.Source = identity.CloneURL()
		return resolved, nil

	case types.SourceURL:
		identity, err := identityFromURL(t.Spec.URL)
		if err != nil {
			return resolved, err
		}
		resolved.Identity = identity
		resolved.Source = t.Spec.URL
		return resolved, nil
	}

	return resolved, pezerrors.Newf(pezerrors.ErrMalformedTarget,
		"plugin %q has no source", t.Spec.DisplayName())
}

// ResolveAll resolves every target, failing on the first bad one.
func ResolveAll(targets []types.InstallTarget) ([]types.ResolvedTarget, error) {
	out := make([]types.ResolvedTarget, 0, len(targets))
	for _, t := range targets {
		r, err := Resolve(t)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func isPathLike(raw string) bool {
	if filepath.IsAbs(raw) {
		return true
	}
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		return true
	}
	return raw == "." || raw == ".." ||
		strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../")
}

func normalizePath(raw string) (string, error) {
	expanded := paths.ExpandHome(raw)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", pezerrors.Wrapf(err, pezerrors.ErrMalformedTarget,
			"cannot resolve path %q", raw)
	}
	return filepath.Clean(abs), nil
}

// splitUnescapedAt splits on the first @ not preceded by a backslash and
// unescapes \@ in the left part.
func splitUnescapedAt(raw string) (left, right string, found bool) {
	escaped := false
	for i, r := range raw {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '@':
			return unescapeAt(raw[:i]), raw[i+1:], true
		}
	}
	return unescapeAt(raw), "", false
}

func unescapeAt(s string) string {
	return strings.ReplaceAll(s, `\@`, "@")
}

func validateShorthand(repoPart, raw string) error {
	segments := strings.Split(repoPart, "/")
	if len(segments) < 2 {
		return pezerrors.Newf(pezerrors.ErrMalformedTarget,
			"invalid plugin target %q: expected <owner>/<repo> or <host>/<owner>/<repo>", raw)
	}
	for _, seg := range segments {
		if seg == "" {
			return pezerrors.Newf(pezerrors.ErrMalformedTarget,
				"invalid plugin target %q: empty path segment", raw)
		}
	}
	return nil
}

// parseRef parses the ref suffix grammar:
//
//	latest | version:<v> | branch:<b> | tag:<t> | commit:<sha> | <v>
//
// A bare value is version shorthand, so owner/repo@v6 works. An empty
// suffix is malformed rather than an implicit "no selector".
func parseRef(ref, raw string) (*types.Selector, error) {
	if ref == "" {
		return nil, pezerrors.Newf(pezerrors.ErrMalformedTarget,
			"invalid plugin target %q: trailing @ without a ref", raw)
	}
	if strings.EqualFold(ref, "latest") {
		return &types.Selector{Kind: types.SelectorLatest}, nil
	}
	for _, kind := range []types.SelectorKind{
		types.SelectorVersion, types.SelectorBranch, types.SelectorTag, types.SelectorCommit,
	} {
		prefix := string(kind) + ":"
		if strings.HasPrefix(ref, prefix) {
			value := strings.TrimPrefix(ref, prefix)
			if value == "" {
				return nil, pezerrors.Newf(pezerrors.ErrMalformedTarget,
					"invalid plugin target %q: %s ref has no value", raw, kind)
			}
			return &types.Selector{Kind: kind, Value: value}, nil
		}
	}
	return &types.Selector{Kind: types.SelectorVersion, Value: ref}, nil
}

// Identity parses owner/repo or host/owner/repo shorthand into a clone
// identity. Lockfile entries store this shorthand in their Repo field, so
// it round-trips through RepoIdentity.DisplayName.
func Identity(repo string) (types.RepoIdentity, error) {
	return identityFromShorthand(repo)
}

func identityFromShorthand(repo string) (types.RepoIdentity, error) {
	segments := strings.Split(repo, "/")
	switch {
	case len(segments) == 2:
		return types.RepoIdentity{Host: types.DefaultHost, Owner: segments[0], Repo: segments[1]}, nil
	case len(segments) >= 3:
		return types.RepoIdentity{
			Host:  segments[0],
			Owner: segments[1],
			Repo:  strings.Join(segments[2:], "/"),
		}, nil
	}
	return types.RepoIdentity{}, pezerrors.Newf(pezerrors.ErrMalformedTarget,
		"invalid repo shorthand %q", repo)
}

func identityFromURL(rawURL string) (types.RepoIdentity, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return types.RepoIdentity{}, pezerrors.Newf(pezerrors.ErrMalformedTarget,
			"invalid plugin url %q", rawURL)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" {
		return types.RepoIdentity{}, pezerrors.Newf(pezerrors.ErrMalformedTarget,
			"invalid plugin url %q: expected a /owner/repo path", rawURL)
	}
	repo := strings.TrimSuffix(segments[len(segments)-1], ".git")
	owner := strings.Join(segments[:len(segments)-1], "/")
	return types.RepoIdentity{Host: u.Host, Owner: owner, Repo: repo}, nil
}
