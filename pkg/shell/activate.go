package shell

import "fmt"

// FishActivateScript renders the wrapper sourced from the user's fish
// config. It wraps the pez binary so conf.d snippets are sourced and their
// install/update/uninstall events emitted in-process, right in the
// interactive shell, while the wrapped binary runs with event emission
// suppressed. A version guard makes re-sourcing after an upgrade replace
// the old wrapper.
//
// Stdout must stay clean of logs so the output can be piped into source.
func FishActivateScript(version string) string {
	return fmt.Sprintf(`
set -l __pez_version "%s"
if not set -q __pez_activate_version; or test "$__pez_activate_version" != "$__pez_version"
    set -g __pez_activate_version $__pez_version

    function __pez_fish_split_subcmd --description "Find subcommand and args"
        set -l args $argv
        set -l i 1
        set -l argc (count $args)
        while test $i -le $argc
            set -l arg $args[$i]
            if test "$arg" = "--"
                return 1
            end
            if string match -rq -- '^-[v]+$' "$arg"
                set i (math $i + 1)
                continue
            end
            switch $arg
            case '--verbose' '-V' '--version' '-h' '--help'
                set i (math $i + 1)
                continue
            case '--jobs'
                set i (math $i + 2)
                continue
            case '--jobs=*'
                set i (math $i + 1)
                continue
            end
            if string match -q -- '-*' "$arg"
                return 1
            end
            set -l subcmd $arg
            set -l subargs $args[(math $i + 1)..-1]
            echo $subcmd $subargs
            return 0
        end
        return 1
    end

    function __pez_fish_source_and_emit --description "Source conf.d and emit events" --argument-names phase from
        set -l passthrough $argv[3..-1]
        set -l paths (command pez files --dir conf.d --from $from -- $passthrough | sort)
        for path in $paths
            if test -f "$path"
                source "$path"
                set -l name (basename "$path" .fish)
                emit "$name"_"$phase"
            end
        end
    end

    function pez --wraps pez --description "pez with fish event hooks"
        set -l parsed (__pez_fish_split_subcmd $argv)
        if test (count $parsed) -eq 0
            command pez $argv
            return $status
        end
        set -l subcmd $parsed[1]
        set -l subargs $parsed[2..-1]
        switch $subcmd
        case install
            env PEZ_SUPPRESS_EMIT=1 command pez $argv
            set -l exit_status $status
            if test $exit_status -eq 0
                __pez_fish_source_and_emit install install $subargs
            end
            return $exit_status
        case update upgrade
            env PEZ_SUPPRESS_EMIT=1 command pez $argv
            set -l exit_status $status
            if test $exit_status -eq 0
                __pez_fish_source_and_emit update $subcmd $subargs
            end
            return $exit_status
        case uninstall remove
            if contains -- --stdin $subargs
                set -l stdin_file (cat | psub -f -s .pez_uninstall)
                cat $stdin_file | __pez_fish_source_and_emit uninstall $subcmd $subargs
                cat $stdin_file | env PEZ_SUPPRESS_EMIT=1 command pez $argv
                set -l exit_status $status
                return $exit_status
            end
            __pez_fish_source_and_emit uninstall $subcmd $subargs
            env PEZ_SUPPRESS_EMIT=1 command pez $argv
            set -l exit_status $status
            return $exit_status
        case '*'
            command pez $argv
        end
    end
end
`, version)
}
