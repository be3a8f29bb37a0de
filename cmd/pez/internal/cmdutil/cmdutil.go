// Package cmdutil carries the glue shared by the pez command packages:
// runtime dependency construction, output format resolution, and the
// conversion of engine results into display rows.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/pez/pkg/commands/doctor"
	"github.com/arthur-debert/pez/pkg/commands/list"
	"github.com/arthur-debert/pez/pkg/config"
	"github.com/arthur-debert/pez/pkg/display"
	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/gitx"
	"github.com/arthur-debert/pez/pkg/lockfile"
	"github.com/arthur-debert/pez/pkg/paths"
	"github.com/arthur-debert/pez/pkg/shell"
	"github.com/arthur-debert/pez/pkg/types"
	"github.com/arthur-debert/pez/pkg/ui"
)

// Command group IDs shared between the root command and the subcommands.
const (
	GroupCore = "core"
	GroupMisc = "misc"
)

// Runtime bundles the process-wide dependencies every command needs:
// resolved directories and the layered runtime settings.
type Runtime struct {
	Paths    paths.Paths
	Settings config.Settings
}

// NewRuntime resolves paths and settings once, at command start.
func NewRuntime() (*Runtime, error) {
	p, err := paths.New()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(p.ConfigDir())
	if err != nil {
		return nil, err
	}
	return &Runtime{Paths: p, Settings: settings}, nil
}

// Backend returns the git backend commands clone and resolve with.
func (r *Runtime) Backend() gitx.Backend {
	return gitx.NewGitBackend()
}

// Emitter returns the conf.d event emitter, honoring the emit_events
// setting. PEZ_SUPPRESS_EMIT is checked per emission inside the emitter.
func (r *Runtime) Emitter() *shell.Emitter {
	return shell.NewEmitter(r.Settings.EmitEvents)
}

// Jobs resolves the clone concurrency bound. The --jobs flag beats the
// layered settings (PEZ_JOBS, settings.toml, default).
func (r *Runtime) Jobs(cmd *cobra.Command) int {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("jobs") {
		if n, err := flags.GetInt("jobs"); err == nil {
			if n < 1 {
				n = 1
			}
			return n
		}
	}
	return r.Settings.Jobs
}

// ResolveFormat parses a --format flag value, turning "auto" into the
// detected terminal format.
func ResolveFormat(value string) (ui.Format, error) {
	format, err := ui.ParseFormat(value)
	if err != nil {
		return 0, err
	}
	if format == ui.FormatAuto {
		format = ui.DetectFormat(os.Stdout)
	}
	return format, nil
}

// Renderer returns the report renderer matching the current stdout.
func Renderer() display.Renderer {
	return display.NewRenderer(ui.DetectFormat(os.Stdout))
}

// PrintReport renders a batch report and converts failed targets into the
// command's exit error.
func PrintReport(w io.Writer, command string, report types.Report) error {
	fmt.Fprint(w, Renderer().RenderReport(command, report))
	return FailureError(report)
}

// FailureError summarizes failed targets as a single error. The per-target
// errors are already in the rendered report, so this only carries the count.
func FailureError(report types.Report) error {
	failed := len(report.Failed())
	switch failed {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("1 plugin failed")
	default:
		return fmt.Errorf("%d plugins failed", failed)
	}
}

// WriteStructured marshals v to w as json or yaml.
func WriteStructured(w io.Writer, format ui.Format, v any) error {
	switch format {
	case ui.FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return pezerrors.Wrap(err, pezerrors.ErrInternal, "failed to encode json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case ui.FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return pezerrors.Wrap(err, pezerrors.ErrInternal, "failed to encode yaml")
		}
		_, err = w.Write(data)
		return err
	}
	return pezerrors.Newf(pezerrors.ErrInternal, "format %s is not machine-readable", format)
}

// PluginRows converts list output into display rows.
func PluginRows(infos []list.PluginInfo) []display.PluginRow {
	rows := make([]display.PluginRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, display.PluginRow{
			Name:   info.Name,
			Repo:   info.Repo,
			Commit: info.CommitSHA,
			Latest: info.LatestSHA,
			Local:  info.Local,
		})
	}
	return rows
}

// EntryRows converts lock entries into display rows, used for prune
// candidate listings.
func EntryRows(entries []lockfile.Entry) []display.PluginRow {
	rows := make([]display.PluginRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, display.PluginRow{
			Name:   entry.Name,
			Repo:   entry.Repo,
			Commit: entry.CommitSHA,
			Local:  entry.IsLocal(),
		})
	}
	return rows
}

// CheckRows converts doctor checks into display rows.
func CheckRows(checks []doctor.Check) []display.CheckRow {
	rows := make([]display.CheckRow, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, display.CheckRow{
			Name:    check.Name,
			Status:  check.Status,
			Details: check.Details,
		})
	}
	return rows
}

// PluginNamesCompletion completes installed plugin names from the lockfile,
// leaving out names already present on the command line.
func PluginNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	p, err := paths.New()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	lock, err := lockfile.Load(p.LockFilePath())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, entry := range lock.Plugins {
		taken := false
		for _, arg := range args {
			if arg == entry.Name {
				taken = true
				break
			}
		}
		if !taken {
			names = append(names, entry.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
