// Package prune implements the pez prune command.
package prune

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/prune"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/ui/confirmations"
)

// NewCommand creates the prune command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().Bool("dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolP("yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolP("force", "f", false, MsgFlagForce)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	force, _ := cmd.Flags().GetBool("force")

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.prune")
	logger.Info().Bool("dry_run", dryRun).Bool("force", force).Msg("pruning undeclared plugins")

	var prompter confirmations.Prompter = confirmations.NewConsole()
	if yes {
		prompter = confirmations.Auto(true)
	}

	result, err := prune.PrunePlugins(cmd.Context(), prune.PrunePluginsOptions{
		Paths:    rt.Paths,
		Emitter:  rt.Emitter(),
		Prompter: prompter,
		DryRun:   dryRun,
		Force:    force,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Candidates) == 0 {
		fmt.Fprintln(out, MsgNothingToPrune)
		return nil
	}
	if dryRun {
		fmt.Fprint(out, cmdutil.Renderer().RenderPlugins(cmdutil.EntryRows(result.Candidates)))
		fmt.Fprintln(out)
		fmt.Fprintf(out, MsgDryRunNotice, len(result.Candidates))
		return nil
	}
	if result.Aborted {
		fmt.Fprintln(out, MsgAborted)
		return nil
	}

	return cmdutil.PrintReport(out, "prune", result.Report)
}
