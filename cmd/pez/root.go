// Package pez wires the command tree for the pez binary.
package pez

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/pez/cmd/pez/commands/activate"
	"github.com/arthur-debert/pez/cmd/pez/commands/doctor"
	"github.com/arthur-debert/pez/cmd/pez/commands/files"
	"github.com/arthur-debert/pez/cmd/pez/commands/initialize"
	"github.com/arthur-debert/pez/cmd/pez/commands/install"
	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/cmd/pez/commands/list"
	"github.com/arthur-debert/pez/cmd/pez/commands/migrate"
	"github.com/arthur-debert/pez/cmd/pez/commands/prune"
	"github.com/arthur-debert/pez/cmd/pez/commands/uninstall"
	"github.com/arthur-debert/pez/cmd/pez/commands/upgrade"
	"github.com/arthur-debert/pez/internal/version"
	"github.com/arthur-debert/pez/pkg/logging"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "pez",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().Int("jobs", 0, MsgFlagJobs)

	rootCmd.AddGroup(&cobra.Group{ID: cmdutil.GroupCore, Title: MsgGroupCore})
	rootCmd.AddGroup(&cobra.Group{ID: cmdutil.GroupMisc, Title: MsgGroupMisc})
	rootCmd.SetHelpCommandGroupID(cmdutil.GroupMisc)

	rootCmd.AddCommand(initialize.NewCommand())
	rootCmd.AddCommand(install.NewCommand())
	rootCmd.AddCommand(upgrade.NewCommand())
	rootCmd.AddCommand(uninstall.NewCommand())
	rootCmd.AddCommand(prune.NewCommand())
	rootCmd.AddCommand(list.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(files.NewCommand())
	rootCmd.AddCommand(activate.NewCommand())
	rootCmd.AddCommand(migrate.NewCommand())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               cmdutil.GroupMisc,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: cmdutil.GroupMisc,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			header := &doc.GenManHeader{
				Title:   "PEZ",
				Section: "1",
			}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}

	cmd.Flags().String("dir", ".", MsgFlagManDir)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: cmdutil.GroupMisc,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pez version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
