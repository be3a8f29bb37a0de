// Package doctor implements the pez doctor command.
package doctor

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/doctor"
	"github.com/arthur-debert/pez/pkg/display"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/ui"
)

// NewCommand creates the doctor command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().String("format", "auto", MsgFlagFormat)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	formatValue, _ := cmd.Flags().GetString("format")
	format, err := cmdutil.ResolveFormat(formatValue)
	if err != nil {
		return err
	}

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.doctor")
	logger.Debug().Msg("running health checks")

	result, err := doctor.RunChecks(doctor.DoctorOptions{Paths: rt.Paths})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == ui.FormatJSON || format == ui.FormatYAML {
		if err := cmdutil.WriteStructured(out, format, result.Checks); err != nil {
			return err
		}
	} else {
		renderer := display.NewRenderer(format)
		fmt.Fprint(out, renderer.RenderChecks(cmdutil.CheckRows(result.Checks)))
	}

	if result.HasError() {
		return fmt.Errorf("health checks failed")
	}
	return nil
}
