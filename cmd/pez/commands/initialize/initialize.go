// Package initialize implements the pez init command.
package initialize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/initialize"
	"github.com/arthur-debert/pez/pkg/logging"
)

// NewCommand creates the init command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().BoolP("force", "f", false, MsgFlagForce)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.init")
	logger.Debug().Bool("force", force).Msg("writing starter manifest")

	result, err := initialize.InitConfig(initialize.InitConfigOptions{
		Paths: rt.Paths,
		Force: force,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Created {
		fmt.Fprintf(out, MsgCreated, result.ConfigPath)
	} else {
		fmt.Fprintf(out, MsgAlreadyExists, result.ConfigPath)
	}
	return nil
}
