// Package uninstall implements the pez uninstall command.
package uninstall

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/uninstall"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/logging"
)

// NewCommand creates the uninstall command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "uninstall <plugins...>",
		Aliases:           []string{"remove"},
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		GroupID:           cmdutil.GroupCore,
		ValidArgsFunction: cmdutil.PluginNamesCompletion,
		RunE:              run,
	}

	cmd.Flags().BoolP("force", "f", false, MsgFlagForce)
	cmd.Flags().Bool("stdin", false, MsgFlagStdin)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	names := args
	if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
		piped, err := uninstall.ReadNames(cmd.InOrStdin())
		if err != nil {
			return err
		}
		names = append(names, piped...)
	}
	if len(names) == 0 {
		return pezerrors.New(pezerrors.ErrInvalidInput,
			"no plugins named; pass names or --stdin")
	}
	force, _ := cmd.Flags().GetBool("force")

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.uninstall")
	logger.Info().Strs("plugins", names).Bool("force", force).Msg("uninstalling plugins")

	result, err := uninstall.UninstallPlugins(cmd.Context(), uninstall.UninstallPluginsOptions{
		Paths:   rt.Paths,
		Emitter: rt.Emitter(),
		Names:   names,
		Force:   force,
	})
	if err != nil {
		return err
	}

	return cmdutil.PrintReport(cmd.OutOrStdout(), "uninstall", result.Report)
}
