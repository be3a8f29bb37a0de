package files

import (
	"io"
	"strings"

	"github.com/arthur-debert/pez/pkg/commands/uninstall"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
)

// wrapperSelection is what a forwarded argv asks for: explicit plugin
// identifiers, every installed plugin, or nothing because the invocation
// was a help or version request.
type wrapperSelection struct {
	idents []string
	all    bool
	help   bool
}

// wrapperFlags describes one subcommand's flag surface just enough to tell
// positionals apart from flags. valueFlags consume the following token.
type wrapperFlags struct {
	boolFlags  map[string]bool
	valueFlags map[string]bool
}

// interpretWrapperArgs re-reads a forwarded argv the way the named
// subcommand's own flag parsing would, keeping the positional plugin
// identifiers. The fish wrapper forwards whatever the user typed, so this
// must accept exactly the flags the real subcommands define.
func interpretWrapperArgs(verb string, argv []string, stdin io.Reader) (wrapperSelection, error) {
	var sel wrapperSelection

	flags, verb, err := wrapperFlagsFor(verb)
	if err != nil {
		return sel, err
	}

	sawStdin := false
	positionalOnly := false
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case positionalOnly || arg == "-" || !strings.HasPrefix(arg, "-"):
			sel.idents = append(sel.idents, arg)
		case arg == "--":
			positionalOnly = true
		case arg == "-h" || arg == "--help" || arg == "-V" || arg == "--version":
			return wrapperSelection{help: true}, nil
		case isVerboseRun(arg):
			// counted shorthand, no value
		case flags.boolFlags[arg]:
			if arg == "--stdin" {
				sawStdin = true
			}
		case flags.valueFlags[arg]:
			i++
		case strings.Contains(arg, "=") && flags.valueFlags[arg[:strings.Index(arg, "=")]]:
			// --jobs=4 form, self contained
		default:
			return sel, pezerrors.Newf(pezerrors.ErrInvalidInput,
				"unknown flag %q for pez %s", arg, verb)
		}
	}

	if len(sel.idents) > 0 {
		return sel, nil
	}

	if verb == "uninstall" {
		if !sawStdin {
			return sel, pezerrors.New(pezerrors.ErrInvalidInput,
				"no plugins specified for uninstall")
		}
		if stdin == nil {
			return sel, pezerrors.New(pezerrors.ErrInvalidInput,
				"--stdin requested but no input is available")
		}
		names, err := uninstall.ReadNames(stdin)
		if err != nil {
			return sel, err
		}
		sel.idents = names
		return sel, nil
	}

	sel.all = true
	return sel, nil
}

func wrapperFlagsFor(verb string) (wrapperFlags, string, error) {
	shared := map[string]bool{"--jobs": true}
	switch verb {
	case "install":
		return wrapperFlags{
			boolFlags:  map[string]bool{"-f": true, "--force": true, "-p": true, "--prune": true, "--verbose": true},
			valueFlags: shared,
		}, verb, nil
	case "upgrade", "update":
		return wrapperFlags{
			boolFlags:  map[string]bool{"--verbose": true},
			valueFlags: shared,
		}, "upgrade", nil
	case "uninstall", "remove":
		return wrapperFlags{
			boolFlags:  map[string]bool{"-f": true, "--force": true, "--stdin": true, "--verbose": true},
			valueFlags: shared,
		}, "uninstall", nil
	}
	return wrapperFlags{}, verb, pezerrors.Newf(pezerrors.ErrInvalidInput,
		"unsupported --from target: %s", verb)
}

// isVerboseRun matches -v, -vv, -vvv and so on.
func isVerboseRun(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	for _, r := range arg[1:] {
		if r != 'v' {
			return false
		}
	}
	return true
}
