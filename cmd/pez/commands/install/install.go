// Package install implements the pez install command.
package install

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/install"
	"github.com/arthur-debert/pez/pkg/commands/prune"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/ui/confirmations"
)

// NewCommand creates the install command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install [targets...]",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		RunE:    run,
	}

	cmd.Flags().BoolP("force", "f", false, MsgFlagForce)
	cmd.Flags().BoolP("prune", "p", false, MsgFlagPrune)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	pruneUndeclared, _ := cmd.Flags().GetBool("prune")
	if pruneUndeclared && len(args) > 0 {
		return pezerrors.New(pezerrors.ErrInvalidInput,
			"--prune only applies to config installs, not explicit targets")
	}

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.install")
	logger.Info().Strs("targets", args).Bool("force", force).Msg("installing plugins")

	result, err := install.InstallPlugins(cmd.Context(), install.InstallPluginsOptions{
		Paths:   rt.Paths,
		Backend: rt.Backend(),
		Emitter: rt.Emitter(),
		Targets: args,
		Force:   force,
		Jobs:    rt.Jobs(cmd),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := cmdutil.Renderer()
	fmt.Fprint(out, renderer.RenderReport("install", result.Report))
	failure := cmdutil.FailureError(result.Report)

	if pruneUndeclared {
		pruneResult, err := prune.PrunePlugins(cmd.Context(), prune.PrunePluginsOptions{
			Paths:    rt.Paths,
			Emitter:  rt.Emitter(),
			Prompter: confirmations.NewConsole(),
			Force:    force,
		})
		if err != nil {
			return err
		}
		if len(pruneResult.Report.Results) > 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, renderer.RenderReport("prune", pruneResult.Report))
		}
		if failure == nil {
			failure = cmdutil.FailureError(pruneResult.Report)
		}
	} else if len(args) == 0 && len(result.Undeclared) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, MsgUndeclaredHint, undeclaredNames(result.Undeclared))
	}

	return failure
}

func undeclaredNames(entries []lockfile.Entry) string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return strings.Join(names, ", ")
}
