// Package upgrade implements the pez upgrade command.
package upgrade

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/upgrade"
	"github.com/arthur-debert/pez/pkg/logging"
)

// NewCommand creates the upgrade command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "upgrade [plugins...]",
		Aliases:           []string{"update"},
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		GroupID:           cmdutil.GroupCore,
		ValidArgsFunction: cmdutil.PluginNamesCompletion,
		RunE:              run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.upgrade")
	logger.Info().Strs("plugins", args).Msg("upgrading plugins")

	result, err := upgrade.UpgradePlugins(cmd.Context(), upgrade.UpgradePluginsOptions{
		Paths:   rt.Paths,
		Backend: rt.Backend(),
		Emitter: rt.Emitter(),
		Names:   args,
	})
	if err != nil {
		return err
	}

	return cmdutil.PrintReport(cmd.OutOrStdout(), "upgrade", result.Report)
}
