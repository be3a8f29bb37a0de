// Package files implements the pez files command, the query the fish
// wrapper uses to find conf.d snippets to source. Stdout carries nothing
// but the requested paths.
package files

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/files"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/ui"
)

// NewCommand creates the files command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "files [plugins...] [-- passthrough...]",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		GroupID:           cmdutil.GroupMisc,
		ValidArgsFunction: cmdutil.PluginNamesCompletion,
		RunE:              run,
	}

	cmd.Flags().Bool("all", false, MsgFlagAll)
	cmd.Flags().String("dir", files.DirAll, MsgFlagDir)
	cmd.Flags().String("from", "", MsgFlagFrom)
	cmd.Flags().String("format", "paths", MsgFlagFormat)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	dir, _ := cmd.Flags().GetString("dir")
	from, _ := cmd.Flags().GetString("from")
	formatValue, _ := cmd.Flags().GetString("format")

	plugins := args
	var passthrough []string
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		plugins, passthrough = args[:at], args[at:]
	}

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.files")
	logger.Debug().Str("from", from).Str("dir", dir).Bool("all", all).Msg("listing plugin files")

	result, err := files.ListFiles(files.ListFilesOptions{
		Paths:       rt.Paths,
		Plugins:     plugins,
		All:         all,
		Dir:         dir,
		From:        from,
		Passthrough: passthrough,
		Stdin:       cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch formatValue {
	case "json":
		paths := result.Paths
		if paths == nil {
			paths = []string{}
		}
		return cmdutil.WriteStructured(out, ui.FormatJSON, paths)
	case "paths":
		for _, path := range result.Paths {
			fmt.Fprintln(out, path)
		}
		return nil
	}
	return pezerrors.Newf(pezerrors.ErrInvalidInput,
		"unknown files format %q (expected paths or json)", formatValue)
}
