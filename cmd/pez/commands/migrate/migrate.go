// Package migrate implements the pez migrate command.
package migrate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/pkg/commands/migrate"
	"github.com/arthur-debert/pez/pkg/logging"
	"github.com/arthur-debert/pez/pkg/types"
)

// NewCommand creates the migrate command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: cmdutil.GroupCore,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().String("file", "", MsgFlagFile)
	cmd.Flags().Bool("apply", false, MsgFlagApply)
	cmd.Flags().Bool("dry-run", false, MsgFlagDryRun)
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	apply, _ := cmd.Flags().GetBool("apply")

	rt, err := cmdutil.NewRuntime()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.migrate")
	logger.Info().Str("file", file).Bool("apply", apply).Msg("importing fisher plugins")

	result, err := migrate.MigratePlugins(migrate.MigratePluginsOptions{
		Paths: rt.Paths,
		File:  file,
		Apply: apply,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Planned) == 0 {
		fmt.Fprintln(out, MsgNothingToImport)
		printSkipped(out, result.Skipped)
		return nil
	}

	if result.Applied {
		fmt.Fprintf(out, MsgImported, len(result.Planned), result.ConfigPath)
	} else {
		fmt.Fprintf(out, MsgPlanHeader, len(result.Planned), result.ConfigPath)
	}
	for _, spec := range result.Planned {
		fmt.Fprintf(out, "  + %s\n", planLine(spec))
	}
	printSkipped(out, result.Skipped)
	if !result.Applied {
		fmt.Fprintln(out, MsgApplyHint)
	}
	return nil
}

func planLine(spec types.PluginSpec) string {
	line := spec.SourceID()
	if spec.Selector != nil && !spec.Selector.Latest() {
		line += "@" + spec.Selector.String()
	}
	return line
}

func printSkipped(out io.Writer, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintln(out, MsgSkippedHeader)
	for _, line := range skipped {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}
