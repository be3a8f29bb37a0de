// Package list implements the pez list command.
package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/list"
	"github.com/arthur-debert/pez/pkg/display"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/ui"
)

// NewCommand creates the list command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().Bool("outdated", false, MsgFlagOutdated)
	cmd.Flags().String("format", "auto", MsgFlagFormat)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	outdated, _ := cmd.Flags().GetBool("outdated")
	formatValue, _ := cmd.Flags().GetString("format")
	format, err := cmdutil.ResolveFormat(formatValue)
	if err != nil {
		return err
	}

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.list")
	logger.Debug().Bool("outdated", outdated).Msg("listing plugins")

	result, err := list.ListPlugins(cmd.Context(), list.ListPluginsOptions{
		Paths:    rt.Paths,
		Backend:  rt.Backend(),
		Outdated: outdated,
		Jobs:     rt.Jobs(cmd),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == ui.FormatJSON || format == ui.FormatYAML {
		plugins := result.Plugins
		if plugins == nil {
			plugins = []list.PluginInfo{}
		}
		return cmdutil.WriteStructured(out, format, plugins)
	}

	renderer := display.NewRenderer(format)
	fmt.Fprint(out, renderer.RenderPlugins(cmdutil.PluginRows(result.Plugins)))
	return nil
}
