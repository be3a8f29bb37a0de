// Package types holds the core data model shared across the pez engine:
// plugin sources and selectors, install targets, resolved selections, and
// per-target outcomes.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LocalCommitSHA is the sentinel recorded for plugins installed from a
// local path, which have no ref history.
const LocalCommitSHA = "local"

// DefaultHost is assumed for owner/repo shorthand.
const DefaultHost = "github.com"

// TargetDir identifies one of the recognized asset directories a plugin
// may ship files in.
type TargetDir string

const (
	// TargetFunctions holds fish function files
	TargetFunctions TargetDir = "functions"

	// TargetCompletions holds fish completion files
	TargetCompletions TargetDir = "completions"

	// TargetConfD holds fish startup snippets
	TargetConfD TargetDir = "conf.d"

	// TargetThemes holds fish theme files
	TargetThemes TargetDir = "themes"
)

// AllTargetDirs returns the recognized asset directories in copy order.
func AllTargetDirs() []TargetDir {
	return []TargetDir{TargetFunctions, TargetCompletions, TargetConfD, TargetThemes}
}

// ParseTargetDir parses a directory name into a TargetDir.
func ParseTargetDir(s string) (TargetDir, error) {
	switch s {
	case "functions":
		return TargetFunctions, nil
	case "completions":
		return TargetCompletions, nil
	case "conf.d":
		return TargetConfD, nil
	case "themes":
		return TargetThemes, nil
	default:
		return "", fmt.Errorf("invalid target dir: %s", s)
	}
}

// Extension returns the file extension copied from this directory.
// Everything else in the directory is ignored.
func (d TargetDir) Extension() string {
	if d == TargetThemes {
		return ".theme"
	}
	return ".fish"
}

// SourceKind discriminates how a plugin source is declared.
type SourceKind string

const (
	// SourceRepo is owner/repo or host/owner/repo shorthand
	SourceRepo SourceKind = "repo"

	// SourceURL is a full clone URL
	SourceURL SourceKind = "url"

	// SourcePath is a local directory
	SourcePath SourceKind = "path"
)

// SelectorKind discriminates how a commit is chosen from a repository.
type SelectorKind string

const (
	// SelectorLatest follows the remote default branch HEAD
	SelectorLatest SelectorKind = "latest"

	// SelectorVersion matches a branch first, then a tag
	SelectorVersion SelectorKind = "version"

	// SelectorBranch matches a branch by exact name
	SelectorBranch SelectorKind = "branch"

	// SelectorTag matches a tag by exact name
	SelectorTag SelectorKind = "tag"

	// SelectorCommit pins an explicit commit sha
	SelectorCommit SelectorKind = "commit"
)

// Selector is a user-declared rule for choosing which commit of a
// repository to install.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// Latest reports whether the selector follows the default HEAD.
func (s Selector) Latest() bool {
	return s.Kind == SelectorLatest || s.Kind == ""
}

func (s Selector) String() string {
	if s.Latest() {
		return string(SelectorLatest)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.Value)
}

// PluginSpec is a declared plugin: exactly one source, at most one
// selector, optional display name. Path sources never carry a selector.
type PluginSpec struct {
	// Name is the optional display name; derived from the source when empty
	Name string

	// Kind says which of Repo, URL, Path is set
	Kind SourceKind

	// Repo is owner/repo or host/owner/repo shorthand (Kind == SourceRepo)
	Repo string

	// URL is a full clone URL (Kind == SourceURL)
	URL string

	// Path is an absolute local directory (Kind == SourcePath)
	Path string

	// Selector is nil when the spec follows the default HEAD
	Selector *Selector
}

// SourceID returns the identity string used for uniqueness across the
// declared configuration and the lockfile.
func (s PluginSpec) SourceID() string {
	switch s.Kind {
	case SourceRepo:
		return s.Repo
	case SourceURL:
		return s.URL
	case SourcePath:
		return s.Path
	}
	return ""
}

// DisplayName returns the explicit name or one derived from the source.
func (s PluginSpec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	id := strings.TrimSuffix(s.SourceID(), "/")
	id = strings.TrimSuffix(id, ".git")
	if s.Kind == SourcePath {
		return filepath.Base(id)
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Provenance records where an install target came from.
type Provenance string

const (
	// FromCLI means the target was named as a command-line argument
	FromCLI Provenance = "cli"

	// FromConfig means the target was read from the declared configuration
	FromConfig Provenance = "config"
)

// InstallTarget is a PluginSpec plus provenance. Inline @ref selectors are
// only parsed for CLI-originated shorthand targets.
type InstallTarget struct {
	Spec PluginSpec

	// Provenance distinguishes CLI arguments from config entries; the
	// existing-clone policy treats them differently
	Provenance Provenance

	// Raw is the original user-supplied string, kept for messages
	Raw string
}

// RepoIdentity is the canonical clone identity of a remote source.
type RepoIdentity struct {
	Host  string
	Owner string
	Repo  string
}

// DisplayName is owner/repo for github.com, host/owner/repo otherwise.
func (r RepoIdentity) DisplayName() string {
	if r.Host == "" || r.Host == DefaultHost {
		return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
	}
	return fmt.Sprintf("%s/%s/%s", r.Host, r.Owner, r.Repo)
}

// CloneURL returns the https clone URL for the identity.
func (r RepoIdentity) CloneURL() string {
	host := r.Host
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("https://%s/%s/%s", host, r.Owner, r.Repo)
}

// ResolvedTarget is the unit of work handed to the install orchestrator:
// an InstallTarget plus its computed clone identity or local path.
type ResolvedTarget struct {
	InstallTarget

	// Identity is the canonical (host, owner, repo); zero when IsLocal
	Identity RepoIdentity

	// IsLocal marks path sources, which skip cloning and resolving
	IsLocal bool

	// Source is the URL handed to the git backend; empty when IsLocal
	Source string
}

// LockKey is the identity recorded in the lockfile: the clone URL for
// remote sources, the absolute path for local ones.
func (t ResolvedTarget) LockKey() string {
	if t.IsLocal {
		return t.Spec.Path
	}
	return t.Source
}

// Selection is the concrete commit resolved from a selector, plus the ref
// kind that actually matched (a Version selector may resolve through a
// branch).
type Selection struct {
	CommitSHA string
	RefKind   SelectorKind
}

// Event names the hook signal emitted for a conf.d file stem.
type Event string

const (
	// EventInstall fires after a plugin's files are first copied
	EventInstall Event = "install"

	// EventUpdate fires after an upgrade re-copies files
	EventUpdate Event = "update"

	// EventUninstall fires before recorded files are removed
	EventUninstall Event = "uninstall"
)
