// Package activate implements the pez activate command. The rendered
// script goes to stdout untouched so it can be piped straight into source.
package activate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pez/cmd/pez/internal/cmdutil"
	"github.com/arthur-debert/pez/internal/version"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/shell"
)

// NewCommand creates the activate command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "activate [shell]",
		Short:     MsgShort,
		Long:      MsgLong,
		Example:   MsgExample,
		GroupID:   cmdutil.GroupMisc,
		ValidArgs: []string{"fish"},
		Args:      cobra.MaximumNArgs(1),
		RunE:      run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	shellName := "fish"
	if len(args) == 1 {
		shellName = args[0]
	}
	if shellName != "fish" {
		return pezerrors.Newf(pezerrors.ErrInvalidInput,
			"unsupported shell %q: pez integrates with fish only", shellName)
	}

	fmt.Fprint(cmd.OutOrStdout(), shell.FishActivateScript(version.Version))
	return nil
}
