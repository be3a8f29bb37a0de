// Package files implements the files command, the query half of the fish
// integration: given plugin identifiers, --all, or a wrapper passthrough
// argv, it answers with the recorded destination paths so the activation
// wrapper knows which files to source.
package files

import (
	"io"
	"sort"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/target"
	"github.com/arthur-debert/pez/pkg/types"
)

// DirAll and DirConfD are the accepted --dir filter values.
const (
	DirAll   = "all"
	DirConfD = "conf.d"
)

// ListFilesOptions defines the options for the ListFiles command.
type ListFilesOptions struct {
	// Paths resolves every directory the command touches.
	Paths paths.Paths
	// Plugins are explicit identifiers to look up.
	Plugins []string
	// All selects every installed plugin instead.
	All bool
	// Dir filters the output: "all" (or empty) keeps everything,
	// "conf.d" keeps only startup snippets.
	Dir string
	// From interprets Passthrough as the argv of this subcommand:
	// install, upgrade, update, uninstall or remove.
	From string
	// Passthrough is the forwarded argv the wrapper received.
	Passthrough []string
	// Stdin feeds --from uninstall --stdin.
	Stdin io.Reader
}

// ListFilesResult carries the matched destination paths, sorted and
// deduplicated.
type ListFilesResult struct {
	Paths []string
}

// ListFiles resolves the requested plugin set against the lockfile and
// returns the recorded destination paths. Help and version passthroughs
// yield an empty result: the wrapper has nothing to source for them.
func ListFiles(opts ListFilesOptions) (*ListFilesResult, error) {
	log := logging.GetLogger("commands.files")
	log.Debug().Str("from", opts.From).Bool("all", opts.All).Msg("starting files")

	filter, err := dirFilter(opts.Dir)
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(opts.Paths.LockFilePath())
	if err != nil {
		return nil, err
	}

	var idents []string
	switch {
	case opts.From != "":
		sel, err := interpretWrapperArgs(opts.From, opts.Passthrough, opts.Stdin)
		if err != nil {
			return nil, err
		}
		if sel.help {
			return &ListFilesResult{}, nil
		}
		if sel.all {
			idents = allIdents(lock)
		} else {
			idents = sel.idents
		}
	case opts.All:
		idents = allIdents(lock)
	case len(opts.Plugins) > 0:
		idents = opts.Plugins
	default:
		return nil, pezerrors.New(pezerrors.ErrInvalidInput,
			"no plugins specified; pass --all or plugin names")
	}

	if len(idents) == 0 {
		return nil, pezerrors.New(pezerrors.ErrPluginNotFound, "no plugins are installed")
	}

	fishDir := opts.Paths.FishConfigDir()
	var out []string
	for _, ident := range idents {
		entry := matchEntry(lock, ident)
		if entry == nil {
			return nil, pezerrors.Newf(pezerrors.ErrPluginNotFound,
				"plugin not installed: %s", ident)
		}
		for _, record := range entry.Files {
			if filter != "" && record.Dir != filter {
				continue
			}
			out = append(out, record.Path(fishDir))
		}
	}

	sort.Strings(out)
	out = dedup(out)
	return &ListFilesResult{Paths: out}, nil
}

func dirFilter(dir string) (types.TargetDir, error) {
	switch dir {
	case "", DirAll:
		return "", nil
	case DirConfD:
		return types.TargetConfD, nil
	}
	return "", pezerrors.Newf(pezerrors.ErrInvalidInput,
		"invalid --dir value %q (want all or conf.d)", dir)
}

func allIdents(lock *lockfile.LockFile) []string {
	idents := make([]string, 0, len(lock.Plugins))
	for _, entry := range lock.Plugins {
		idents = append(idents, entry.Source)
	}
	return idents
}

// matchEntry tries the identifier as given first, then the canonical form
// a full target parse yields, so "owner/pkg@v1" and URLs also match.
func matchEntry(lock *lockfile.LockFile, ident string) *lockfile.Entry {
	if entry := lock.GetByName(ident); entry != nil {
		return entry
	}
	parsed, err := target.Parse(ident)
	if err != nil {
		return nil
	}
	resolved, err := target.Resolve(parsed)
	if err != nil {
		return nil
	}
	if entry := lock.Get(resolved.LockKey()); entry != nil {
		return entry
	}
	if !resolved.IsLocal {
		return lock.GetByName(resolved.Identity.DisplayName())
	}
	return nil
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
