package display

import "github.com/arthur-debert/pez/pkg/types"

// PluginRow is one line of the list output.
type PluginRow struct {
	Name   string
	Repo   string
	Commit string
	// Latest is the commit a newer upstream resolves to. Only the
	// outdated listing sets it.
	Latest string
	Local  bool
}

// Check statuses as the doctor command reports them.
const (
	CheckOK    = "ok"
	CheckWarn  = "warn"
	CheckError = "error"
)

// CheckRow is one line of the doctor report.
type CheckRow struct {
	Name    string
	Status  string
	Details string
}

// Summary tallies the terminal states of a report.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
}

// Summarize counts a report's outcomes.
func Summarize(report types.Report) Summary {
	return Summary{
		Completed: len(report.Installed()),
		Skipped:   len(report.Skipped()),
		Failed:    len(report.Failed()),
	}
}
